package model

import (
	"time"

	"gorm.io/datatypes"
)

// LatestSnapshotName 唯一一条快照记录的名称（只保留最新一份）
const LatestSnapshotName = "latest"

// SnapshotRecord 对应 snapshots 表，保存最新一次发布的快照
type SnapshotRecord struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string         `gorm:"column:name;type:varchar(32);uniqueIndex;not null"`
	RunID      string         `gorm:"column:run_id;type:varchar(64);not null"`
	Success    bool           `gorm:"column:success;not null"`
	UpdateTime string         `gorm:"column:update_time;type:varchar(32);not null"` // 上海时间 YYYY-MM-DD HH:MM:SS
	MatchCount int            `gorm:"column:match_count;not null;default:0"`
	Payload    datatypes.JSON `gorm:"column:payload;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (SnapshotRecord) TableName() string { return "snapshots" }
