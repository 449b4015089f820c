package model

import (
	"bytes"
	"encoding/json"
)

// ========== 赛程接口响应结构（match-list） ==========

// MatchListResponse 赛程列表根响应
type MatchListResponse struct {
	Body *MatchListBody `json:"body"`
}

// MatchListBody body.matchList：日期键 → 当日比赛
type MatchListBody struct {
	MatchList map[string][]ScheduledMatch `json:"matchList"`
}

// ========== 节点接口响应结构（basic-data/{mgdbId}） ==========

// NodeDocument 单场节点根响应
type NodeDocument struct {
	Code int          `json:"code"`
	Body *NodeDocBody `json:"body"`
}

// NodeDocBody body.multiPlayList
type NodeDocBody struct {
	MultiPlayList *MultiPlayList `json:"multiPlayList"`
}

// MultiPlayList 三类节点：回放、直播、预告
type MultiPlayList struct {
	ReplayList []NodeItem `json:"replayList"`
	LiveList   []NodeItem `json:"liveList"`
	PreList    []NodeItem `json:"preList"`

	// Skipped 解析失败被跳过的条目数
	Skipped int `json:"-"`
}

// UnmarshalJSON 逐条解析节点，单条格式错误只跳过该条
func (m *MultiPlayList) UnmarshalJSON(data []byte) error {
	var raw struct {
		ReplayList []json.RawMessage `json:"replayList"`
		LiveList   []json.RawMessage `json:"liveList"`
		PreList    []json.RawMessage `json:"preList"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = MultiPlayList{}
	m.ReplayList = m.decodeItems(raw.ReplayList)
	m.LiveList = m.decodeItems(raw.LiveList)
	m.PreList = m.decodeItems(raw.PreList)
	return nil
}

func (m *MultiPlayList) decodeItems(raw []json.RawMessage) []NodeItem {
	if raw == nil {
		return nil
	}
	items := make([]NodeItem, 0, len(raw))
	for _, r := range raw {
		var item NodeItem
		if bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
			m.Skipped++
			continue
		}
		if err := json.Unmarshal(r, &item); err != nil {
			m.Skipped++
			continue
		}
		items = append(items, item)
	}
	return items
}

// NodeItem 节点条目，仅使用 pID 与 name；name 为数字时按字面值保留
type NodeItem struct {
	PID  FlexID `json:"pID"`
	Name FlexID `json:"name"`
}
