package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner 可被调度的同步任务
type Runner interface {
	RunAndPublish(ctx context.Context) (*RunResult, error)
}

// Scheduler 按固定间隔触发同步
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *logrus.Logger
}

func NewScheduler(runner Runner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Start 阻塞直到 ctx 取消；interval<=0 时直接返回
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("未配置同步间隔，定时同步关闭")
		return
	}
	s.logger.Infof("定时同步已启动，间隔: %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("定时同步已停止")
			return
		case <-ticker.C:
			if _, err := s.runner.RunAndPublish(ctx); err != nil {
				s.logger.WithError(err).Warn("定时同步发布失败")
			}
		}
	}
}
