package repository

import (
	"context"
	"errors"
	"testing"

	"MatchSync/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skipf("sqlite 不可用: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// 内存库每个连接独立
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&model.SnapshotRecord{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestSnapshotRepositoryUpsertLatest(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	if _, err := repo.GetLatest(ctx); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetLatest on empty table = %v", err)
	}

	first := &model.SnapshotRecord{RunID: "r1", Success: true, UpdateTime: "2024-01-03 15:00:00", MatchCount: 1, Payload: []byte(`{"success":true}`)}
	if err := repo.UpsertLatest(ctx, first); err != nil {
		t.Fatalf("UpsertLatest: %v", err)
	}
	second := &model.SnapshotRecord{RunID: "r2", Success: true, UpdateTime: "2024-01-03 16:00:00", MatchCount: 2, Payload: []byte(`{"success":true,"data":[]}`)}
	if err := repo.UpsertLatest(ctx, second); err != nil {
		t.Fatalf("UpsertLatest: %v", err)
	}

	var count int64
	if err := db.Model(&model.SnapshotRecord{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want exactly one latest row", count)
	}

	got, err := repo.GetLatest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != "r2" || got.MatchCount != 2 || got.UpdateTime != "2024-01-03 16:00:00" {
		t.Errorf("latest = %+v", got)
	}
}

func TestSnapshotRepositoryWithTxRollback(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	rollback := errors.New("rollback")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).UpsertLatest(ctx, &model.SnapshotRecord{RunID: "r1", UpdateTime: "x", Payload: []byte(`{}`)}); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("Transaction = %v", err)
	}
	if _, err := repo.GetLatest(ctx); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("row must not survive rollback, got %v", err)
	}
}
