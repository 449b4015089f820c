package service

import (
	"strings"
	"time"

	"MatchSync/internal/model"
	"MatchSync/internal/normalize"
)

// shanghai 固定 UTC+8，不依赖系统时区库
var shanghai = time.FixedZone("UTC+8", 8*60*60)

// ShanghaiTime 上海时间 YYYY-MM-DD HH:MM:SS
func ShanghaiTime(now time.Time) string {
	return now.In(shanghai).Format("2006-01-02 15:04:05")
}

// BuildSnapshot 组装成功快照，不校验比赛内容
func BuildSnapshot(matches []model.MergedMatch, updateTime string) *model.Snapshot {
	if matches == nil {
		matches = []model.MergedMatch{}
	}
	return &model.Snapshot{
		Success:    true,
		UpdateTime: updateTime,
		Data:       matches,
	}
}

// FailedSnapshot 组装失败快照，data 固定为空数组
func FailedSnapshot(err error, updateTime string) *model.Snapshot {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &model.Snapshot{
		Success:    false,
		Error:      msg,
		UpdateTime: updateTime,
		Data:       []model.MergedMatch{},
	}
}

// NewMergedMatch 复制赛程展示字段并格式化 keyword
func NewMergedMatch(match *model.ScheduledMatch, nodes []model.PlayableNode) model.MergedMatch {
	if nodes == nil {
		nodes = []model.PlayableNode{}
	}
	keyword := normalize.FormatDateTime(match.Keyword)

	names := make([]string, 0, len(match.Presenters))
	for _, p := range match.Presenters {
		names = append(names, p.Name.String())
	}

	return model.MergedMatch{
		MgdbID:          match.MgdbID,
		PID:             match.PID,
		Title:           match.Title.String(),
		Keyword:         keyword,
		SportItemID:     match.SportItemID,
		MatchStatus:     match.MatchStatus,
		MatchField:      match.MatchField.String(),
		CompetitionName: match.CompetitionName,
		PadImg:          match.PadImg.String(),
		CompetitionLogo: match.CompetitionLogo.String(),
		PkInfoTitle:     match.PkInfoTitle,
		ModifyTitle:     match.ModifyTitle.String(),
		Presenters:      strings.Join(names, " "),
		MatchInfo:       model.MatchInfo{Time: keyword},
		Nodes:           nodes,
	}
}
