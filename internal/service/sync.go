package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"MatchSync/internal/interfaces"
	"MatchSync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// RunStats 一次同步的统计
type RunStats struct {
	RunID              string        `json:"run_id"`
	Success            bool          `json:"success"`
	Candidates         int           `json:"candidates"`
	Dates              int           `json:"dates"`
	Matches            int           `json:"matches"`
	Correlated         int           `json:"correlated"`
	CorrelationSkipped int           `json:"correlation_skipped"`
	NodeFailures       int           `json:"node_failures"`
	Published          bool          `json:"published"`
	Duration           time.Duration `json:"duration"`
}

// RunResult RunAndPublish 的返回
type RunResult struct {
	Snapshot *model.Snapshot
	Stats    *RunStats
}

// SyncService 串行拉取 M3U、赛程与单场节点，匹配合并后生成快照
type SyncService struct {
	schedule   interfaces.ScheduleSource
	playlist   interfaces.PlaylistSource
	resolver   *NodeResolver
	correlator *Correlator
	publishers []interfaces.Publisher
	matchDelay time.Duration
	logger     *logrus.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	group  singleflight.Group
	mu     sync.RWMutex
	latest *model.Snapshot
	stats  *RunStats
}

// SyncOptions 构建 SyncService 的依赖
type SyncOptions struct {
	Schedule   interfaces.ScheduleSource
	Nodes      interfaces.NodeSource
	Playlist   interfaces.PlaylistSource
	Publishers []interfaces.Publisher
	MatchDelay time.Duration
	Tolerance  time.Duration
}

func NewSyncService(opts SyncOptions, logger *logrus.Logger) *SyncService {
	return &SyncService{
		schedule:   opts.Schedule,
		playlist:   opts.Playlist,
		resolver:   NewNodeResolver(opts.Nodes, logger),
		correlator: NewCorrelator(opts.Tolerance),
		publishers: opts.Publishers,
		matchDelay: opts.MatchDelay,
		logger:     logger,
		now:        time.Now,
		sleep:      pause,
	}
}

// Run 执行一次完整同步；不会返回 nil 快照，失败时返回 success=false 的快照
func (s *SyncService) Run(ctx context.Context) (*model.Snapshot, *RunStats) {
	stats := &RunStats{RunID: uuid.NewString()}
	started := s.now()
	logger := s.logger.WithField("run_id", stats.RunID)
	logger.Info("开始获取赛事数据...")

	matches, err := s.collect(ctx, logger, stats)
	stats.Duration = s.now().Sub(started)

	var snapshot *model.Snapshot
	if err != nil {
		logger.WithError(err).Error("处理数据时发生错误")
		snapshot = FailedSnapshot(err, ShanghaiTime(s.now()))
	} else {
		snapshot = BuildSnapshot(matches, ShanghaiTime(s.now()))
		stats.Success = true
		logger.WithFields(logrus.Fields{
			"matches":             stats.Matches,
			"correlated":          stats.Correlated,
			"correlation_skipped": stats.CorrelationSkipped,
			"node_failures":       stats.NodeFailures,
		}).Info("赛事数据处理完成")
	}
	return snapshot, stats
}

func (s *SyncService) collect(ctx context.Context, logger *logrus.Entry, stats *RunStats) ([]model.MergedMatch, error) {
	candidates := s.playlist.FetchCandidates(ctx)
	if candidates == nil {
		candidates = model.NewCandidateSet()
	}
	stats.Candidates = candidates.Len()

	matchList, err := s.schedule.FetchMatchList(ctx)
	if err != nil {
		return nil, err
	}

	dateKeys := make([]string, 0, len(matchList))
	for k := range matchList {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)
	stats.Dates = len(dateKeys)

	result := []model.MergedMatch{}
	for _, dateKey := range dateKeys {
		matches := matchList[dateKey]
		logger.Infof("处理日期 %s，共 %d 场比赛", dateKey, len(matches))

		for i := range matches {
			match := &matches[i]
			result = append(result, s.processMatch(ctx, logger, match, candidates, stats))
			stats.Matches++

			// 固定间隔，避免请求过于频繁
			s.sleep(ctx, s.matchDelay)
		}
	}
	return result, nil
}

func (s *SyncService) processMatch(ctx context.Context, logger *logrus.Entry, match *model.ScheduledMatch, candidates *model.CandidateSet, stats *RunStats) model.MergedMatch {
	mgdbID := match.MgdbID.String()
	matchLogger := logger.WithField("mgdb_id", mgdbID)
	matchLogger.Debug("获取比赛节点数据")

	nodes, ok := s.resolver.Resolve(ctx, mgdbID)
	if !ok {
		stats.NodeFailures++
	}

	merged, corr := s.correlator.Correlate(match, candidates, nodes)
	switch {
	case corr.Skipped:
		stats.CorrelationSkipped++
		matchLogger.WithField("keyword", match.Keyword).Warn("keyword 末尾不是 HH:MM，跳过 M3U 匹配")
	case corr.Matched:
		stats.Correlated++
		matchLogger.WithField("tvg_id", corr.Key).Infof("匹配到 M3U 数据，追加 %d 个节点", corr.Appended)
	}
	return NewMergedMatch(match, merged)
}

// RunAndPublish 执行同步并发布有效快照；并发调用共享同一次运行
func (s *SyncService) RunAndPublish(ctx context.Context) (*RunResult, error) {
	v, err, shared := s.group.Do("sync", func() (interface{}, error) {
		return s.runAndPublish(ctx)
	})
	if shared {
		s.logger.Debug("复用进行中的同步任务")
	}
	res, _ := v.(*RunResult)
	return res, err
}

func (s *SyncService) runAndPublish(ctx context.Context) (*RunResult, error) {
	snapshot, stats := s.Run(ctx)
	result := &RunResult{Snapshot: snapshot, Stats: stats}
	defer s.remember(result)

	if !snapshot.Publishable() {
		s.logger.WithField("run_id", stats.RunID).Warn("数据获取失败或数据为空，不更新输出")
		return result, nil
	}

	var errs []error
	for _, p := range s.publishers {
		if err := p.Publish(ctx, stats.RunID, snapshot); err != nil {
			s.logger.WithError(err).WithField("publisher", p.Name()).Error("发布快照失败")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		s.logger.WithField("publisher", p.Name()).Infof("最新数据已发布，共 %d 场比赛", len(snapshot.Data))
	}
	stats.Published = len(errs) == 0
	return result, errors.Join(errs...)
}

func (s *SyncService) remember(result *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = result.Stats
	if result.Snapshot.Publishable() {
		s.latest = result.Snapshot
	}
}

// Latest 最近一次有效快照，尚无时返回 nil
func (s *SyncService) Latest() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Restore 启动时载入已发布的快照，无效快照忽略
func (s *SyncService) Restore(snapshot *model.Snapshot) bool {
	if !snapshot.Publishable() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = snapshot
	}
	return true
}

// LastStats 最近一次运行统计
func (s *SyncService) LastStats() *RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
