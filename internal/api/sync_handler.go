package api

import (
	"context"
	"net/http"

	"MatchSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsSource 最近一次运行统计
type StatsSource interface {
	LastStats() *service.RunStats
}

type SyncHandler struct {
	runner service.Runner
	stats  StatsSource
	logger *logrus.Logger
}

func NewSyncHandler(runner service.Runner, stats StatsSource, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{runner: runner, stats: stats, logger: logger}
}

// TriggerSync 手动触发一次同步，进行中的同步会被复用
// POST /sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	// 客户端断开不应中断正在进行的同步
	ctx := context.WithoutCancel(c.Request.Context())
	res, err := h.runner.RunAndPublish(ctx)
	if res == nil || res.Snapshot == nil {
		h.logger.WithError(err).Error("手动同步失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessage(err)})
		return
	}

	body := gin.H{
		"success": res.Snapshot.Success,
		"stats":   res.Stats,
	}
	if res.Snapshot.Error != "" {
		body["error"] = res.Snapshot.Error
	}
	if err != nil {
		h.logger.WithError(err).Error("手动同步发布失败")
		body["publish_error"] = err.Error()
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Healthz 存活检查，附带最近一次运行统计
// GET /healthz
func (h *SyncHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"last_run": h.stats.LastStats(),
	})
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
