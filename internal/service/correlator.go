package service

import (
	"strings"
	"time"

	"MatchSync/internal/model"
	"MatchSync/internal/normalize"
)

// DefaultTimeTolerance 赛程与 M3U 开赛时间允许误差（含边界）
const DefaultTimeTolerance = 30 * time.Minute

// Correlation 单场比赛的匹配结果
type Correlation struct {
	Skipped  bool   // keyword 末尾不是 HH:MM，未进行匹配
	Matched  bool   // 命中候选
	Key      string // 命中候选的 key
	Appended int    // 追加的 M3U 节点数
}

// Correlator 用 队伍 + 赛事名 + 时间窗口 三项在 M3U 候选中查找同一场比赛。
// 按候选插入顺序取第一个满足条件的候选，不做最优匹配。
type Correlator struct {
	toleranceMinutes int
}

func NewCorrelator(tolerance time.Duration) *Correlator {
	if tolerance <= 0 {
		tolerance = DefaultTimeTolerance
	}
	return &Correlator{toleranceMinutes: int(tolerance / time.Minute)}
}

// Correlate 返回追加 M3U 节点后的节点列表及匹配结果；nodes 本身不被修改
func (c *Correlator) Correlate(match *model.ScheduledMatch, candidates *model.CandidateSet, nodes []model.PlayableNode) ([]model.PlayableNode, Correlation) {
	clock, ok := normalize.TailClock(match.Keyword)
	if !ok {
		return nodes, Correlation{Skipped: true}
	}
	matchMinutes, _ := normalize.ClockMinutes(clock)

	teams := normalize.NormalizeTeamString(match.PkInfoTitle)
	competition := strings.ToLower(match.CompetitionName)

	var hit *model.AggregatedCandidate
	candidates.Each(func(cand *model.AggregatedCandidate) bool {
		if normalize.NormalizeTeamString(cand.NormalizedIdentifier) != teams {
			return true
		}
		if strings.ToLower(cand.CompetitionName) != competition {
			return true
		}
		if !c.withinWindow(cand.Times, matchMinutes) {
			return true
		}
		hit = cand
		return false
	})
	if hit == nil {
		return nodes, Correlation{}
	}

	merged := make([]model.PlayableNode, 0, len(nodes)+len(hit.Nodes))
	merged = append(merged, nodes...)
	for _, n := range hit.Nodes {
		merged = append(merged, model.PlayableNode{URL: n.URL, Name: n.Name})
	}
	return merged, Correlation{Matched: true, Key: hit.NormalizedIdentifier, Appended: len(hit.Nodes)}
}

func (c *Correlator) withinWindow(times []string, matchMinutes int) bool {
	for _, t := range times {
		m, ok := normalize.ClockMinutes(t)
		if !ok {
			continue
		}
		diff := m - matchMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff <= c.toleranceMinutes {
			return true
		}
	}
	return false
}
