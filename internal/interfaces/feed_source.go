package interfaces

import (
	"context"

	"MatchSync/internal/model"
)

// ScheduleSource 赛程数据源：返回按日期键分组的比赛
type ScheduleSource interface {
	FetchMatchList(ctx context.Context) (map[string][]model.ScheduledMatch, error)
}

// NodeSource 单场节点数据源
type NodeSource interface {
	FetchNodeDocument(ctx context.Context, mgdbID string) (*model.NodeDocument, error)
}

// PlaylistSource M3U 数据源：失败时返回空集合而不是错误
type PlaylistSource interface {
	FetchCandidates(ctx context.Context) *model.CandidateSet
}

// Publisher 快照输出
type Publisher interface {
	Name() string
	Publish(ctx context.Context, runID string, snapshot *model.Snapshot) error
}
