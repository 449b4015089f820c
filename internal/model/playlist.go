package model

// PlaylistEntry M3U 中一组 #EXTINF + URL 解析出的条目（仅在聚合过程中使用）
type PlaylistEntry struct {
	IdentifierRaw string // tvg-id
	DisplayName   string // tvg-name
	GroupTag      string // group-title
	URL           string
}

// CandidateNode M3U 来源的节点
type CandidateNode struct {
	Name string
	URL  string
}

// AggregatedCandidate 同一 tvg-id（去空白后）聚合后的候选
type AggregatedCandidate struct {
	IdentifierRaw        string
	NormalizedIdentifier string
	CompetitionName      string
	Times                []string // HH:MM，按出现顺序追加，允许重复
	Nodes                []CandidateNode
}

// CandidateSet 按首次出现顺序保存的候选集合
type CandidateSet struct {
	order []string
	byKey map[string]*AggregatedCandidate
}

func NewCandidateSet() *CandidateSet {
	return &CandidateSet{byKey: make(map[string]*AggregatedCandidate)}
}

// Add 追加一条已解析条目；相同 key 合并到同一候选
func (c *CandidateSet) Add(key, identifierRaw, competitionName, clock string, node CandidateNode) {
	if cand, ok := c.byKey[key]; ok {
		cand.Times = append(cand.Times, clock)
		cand.Nodes = append(cand.Nodes, node)
		return
	}
	c.byKey[key] = &AggregatedCandidate{
		IdentifierRaw:        identifierRaw,
		NormalizedIdentifier: key,
		CompetitionName:      competitionName,
		Times:                []string{clock},
		Nodes:                []CandidateNode{node},
	}
	c.order = append(c.order, key)
}

// Get 按 key 查找候选
func (c *CandidateSet) Get(key string) (*AggregatedCandidate, bool) {
	if c == nil {
		return nil, false
	}
	cand, ok := c.byKey[key]
	return cand, ok
}

// Len 候选数量
func (c *CandidateSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Each 按插入顺序遍历，fn 返回 false 时停止
func (c *CandidateSet) Each(fn func(*AggregatedCandidate) bool) {
	if c == nil {
		return
	}
	for _, key := range c.order {
		if !fn(c.byKey[key]) {
			return
		}
	}
}
