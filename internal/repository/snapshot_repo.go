package repository

import (
	"context"

	"MatchSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository 快照仓储，只维护 name=latest 的一条记录
type SnapshotRepository interface {
	UpsertLatest(ctx context.Context, rec *model.SnapshotRecord) error
	GetLatest(ctx context.Context) (*model.SnapshotRecord, error)
	// WithTx 返回绑定到事务的仓储
	WithTx(tx *gorm.DB) SnapshotRepository
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) WithTx(tx *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: tx}
}

func (r *snapshotRepository) UpsertLatest(ctx context.Context, rec *model.SnapshotRecord) error {
	rec.Name = model.LatestSnapshotName
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"run_id", "success", "update_time", "match_count", "payload", "updated_at"}),
	}).Create(rec).Error
}

// GetLatest 无记录时返回 gorm.ErrRecordNotFound
func (r *snapshotRepository) GetLatest(ctx context.Context) (*model.SnapshotRecord, error) {
	var rec model.SnapshotRecord
	if err := r.db.WithContext(ctx).Where("name = ?", model.LatestSnapshotName).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
