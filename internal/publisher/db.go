package publisher

import (
	"context"
	"fmt"

	"MatchSync/internal/model"
	"MatchSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DBPublisher 将快照写入 snapshots 表的 latest 记录
type DBPublisher struct {
	db     *gorm.DB
	repo   repository.SnapshotRepository
	logger *logrus.Logger
}

func NewDBPublisher(db *gorm.DB, logger *logrus.Logger) *DBPublisher {
	return &DBPublisher{db: db, repo: repository.NewSnapshotRepository(db), logger: logger}
}

func (p *DBPublisher) Name() string { return "database" }

// Publish 在事务中写入并回读校验，校验失败回滚，旧记录保持不变
func (p *DBPublisher) Publish(ctx context.Context, runID string, snapshot *model.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := p.repo.WithTx(tx)
		rec := &model.SnapshotRecord{
			RunID:      runID,
			Success:    snapshot.Success,
			UpdateTime: snapshot.UpdateTime,
			MatchCount: len(snapshot.Data),
			Payload:    payload,
		}
		if err := repo.UpsertLatest(ctx, rec); err != nil {
			return fmt.Errorf("写入快照失败: %w", err)
		}
		saved, err := repo.GetLatest(ctx)
		if err != nil {
			return fmt.Errorf("回读快照失败: %w", err)
		}
		if saved.RunID != runID {
			return fmt.Errorf("%w: run_id 不一致", ErrInvalidSnapshot)
		}
		return validatePayload(saved.Payload)
	})
	if err != nil {
		return err
	}
	p.logger.WithFields(logrus.Fields{
		"run_id":      runID,
		"match_count": len(snapshot.Data),
	}).Info("数据已写入数据库")
	return nil
}

// Load 读取数据库中的最新快照
func (p *DBPublisher) Load(ctx context.Context) (*model.Snapshot, error) {
	rec, err := p.repo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal(rec.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("解析快照失败: %w", err)
	}
	return &snapshot, nil
}
