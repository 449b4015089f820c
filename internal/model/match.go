package model

import (
	"bytes"
	"encoding/json"
)

// FlexID 上游 ID 字段，兼容数字与字符串两种写法，统一按字符串输出
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// FlexString 赛程展示字段：字符串原样保留，数字与布尔取字面值，null、对象与数组视为空串
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case data[0] == '{', data[0] == '[':
		*f = ""
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// Presenter 解说员
type Presenter struct {
	Name FlexString `json:"name"`
}

// ScheduledMatch 赛程接口 body.matchList 中的单场比赛（只读输入）
type ScheduledMatch struct {
	MgdbID          FlexID          `json:"mgdbId"`
	PID             FlexID          `json:"pID"`
	Title           FlexString      `json:"title"`
	Keyword         string          `json:"keyword"` // 原始日期时间，如 "1月3日 15:00"
	SportItemID     json.RawMessage `json:"sportItemId"`
	MatchStatus     json.RawMessage `json:"matchStatus"`
	MatchField      FlexString      `json:"matchField"`
	CompetitionName string          `json:"competitionName"`
	PadImg          FlexString      `json:"padImg"`
	CompetitionLogo FlexString      `json:"competitionLogo"`
	PkInfoTitle     string          `json:"pkInfoTitle"` // "主队VS客队"
	ModifyTitle     FlexString      `json:"modifyTitle"`
	Presenters      []Presenter     `json:"presenters"`
}

// PlayableNode 可播放节点：节点接口来源为 {pID,name}，M3U 来源为 {url,name}
type PlayableNode struct {
	PID  FlexID `json:"pID,omitempty"`
	URL  string `json:"url,omitempty"`
	Name string `json:"name"`
}

// DedupKey 节点接口来源的去重键 pID|name
func (n PlayableNode) DedupKey() string {
	return string(n.PID) + "|" + n.Name
}

// MatchInfo 输出中附带的时间信息
type MatchInfo struct {
	Time string `json:"time"`
}

// MergedMatch 输出记录：赛程展示字段 + 格式化时间 + 合并后的节点
type MergedMatch struct {
	MgdbID          FlexID          `json:"mgdbId"`
	PID             FlexID          `json:"pID"`
	Title           string          `json:"title"`
	Keyword         string          `json:"keyword"`
	SportItemID     json.RawMessage `json:"sportItemId,omitempty"`
	MatchStatus     json.RawMessage `json:"matchStatus,omitempty"`
	MatchField      string          `json:"matchField"`
	CompetitionName string          `json:"competitionName"`
	PadImg          string          `json:"padImg"`
	CompetitionLogo string          `json:"competitionLogo"`
	PkInfoTitle     string          `json:"pkInfoTitle"`
	ModifyTitle     string          `json:"modifyTitle"`
	Presenters      string          `json:"presenters"`
	MatchInfo       MatchInfo       `json:"matchInfo"`
	Nodes           []PlayableNode  `json:"nodes"`
}

// Snapshot 一次运行的输出结果
type Snapshot struct {
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	UpdateTime string        `json:"updateTime"`
	Data       []MergedMatch `json:"data"`
}

// Publishable 是否满足发布条件：成功且 data 非空
func (s *Snapshot) Publishable() bool {
	return s != nil && s.Success && len(s.Data) > 0
}
