// Package publisher 快照输出：本地 JSON 文件与数据库两种落地方式，均只在校验通过后替换旧数据
package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MatchSync/internal/model"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidSnapshot 写入后校验失败（success=false 或 data 为空）
var ErrInvalidSnapshot = errors.New("数据验证失败")

const lockRetryDelay = 100 * time.Millisecond

// FilePublisher 先写临时文件，回读校验后重命名为正式文件
type FilePublisher struct {
	dir          string
	fileName     string
	tempFileName string
	logger       *logrus.Logger
	writeFile    func(name string, data []byte, perm os.FileMode) error
}

func NewFilePublisher(dir, fileName, tempFileName string, logger *logrus.Logger) *FilePublisher {
	if dir == "" {
		dir = "."
	}
	return &FilePublisher{
		dir:          dir,
		fileName:     fileName,
		tempFileName: tempFileName,
		logger:       logger,
		writeFile:    os.WriteFile,
	}
}

func (p *FilePublisher) Name() string { return "file" }

// Path 正式文件路径
func (p *FilePublisher) Path() string { return filepath.Join(p.dir, p.fileName) }

func (p *FilePublisher) tempPath() string { return filepath.Join(p.dir, p.tempFileName) }

// Publish 同一输出目录的多个进程通过 <正式文件>.lock 互斥
func (p *FilePublisher) Publish(ctx context.Context, runID string, snapshot *model.Snapshot) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	lock := newLock(p.Path())
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("获取输出文件锁失败: %w", err)
	}
	if !locked {
		return fmt.Errorf("获取输出文件锁失败: %s", lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.WithError(err).Warn("释放输出文件锁失败")
		}
	}()

	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}
	if err := p.writeFile(p.tempPath(), raw, 0o644); err != nil {
		p.removeTemp()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}

	if err := p.validateTemp(); err != nil {
		p.removeTemp()
		return err
	}

	if err := os.Rename(p.tempPath(), p.Path()); err != nil {
		return fmt.Errorf("替换正式文件失败: %w", err)
	}
	p.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"path":   p.Path(),
	}).Info("数据已写入正式文件")
	return nil
}

// removeTemp 清理写入或校验失败留下的临时文件
func (p *FilePublisher) removeTemp() {
	if err := os.Remove(p.tempPath()); err != nil && !os.IsNotExist(err) {
		p.logger.WithError(err).Warn("删除临时文件失败")
	}
}

func (p *FilePublisher) validateTemp() error {
	raw, err := os.ReadFile(p.tempPath())
	if err != nil {
		return fmt.Errorf("读取临时文件失败: %w", err)
	}
	return validatePayload(raw)
}

// Load 读取正式文件，文件不存在时返回 os.ErrNotExist
func (p *FilePublisher) Load() (*model.Snapshot, error) {
	raw, err := os.ReadFile(p.Path())
	if err != nil {
		return nil, err
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("解析正式文件失败: %w", err)
	}
	return &snapshot, nil
}

func newLock(canonicalPath string) *flock.Flock {
	return flock.New(canonicalPath + ".lock")
}

// validatePayload 回读后的统一校验规则
func validatePayload(raw []byte) error {
	var snapshot model.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if !snapshot.Publishable() {
		return ErrInvalidSnapshot
	}
	return nil
}
