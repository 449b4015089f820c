package api

import (
	"net/http"
	"strings"

	"MatchSync/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SnapshotSource 提供最近一次有效快照
type SnapshotSource interface {
	Latest() *model.Snapshot
}

// MatchHandler 提供给前端的比赛查询接口
type MatchHandler struct {
	source SnapshotSource
	logger *logrus.Logger
}

func NewMatchHandler(source SnapshotSource, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{source: source, logger: logger}
}

// ListMatches 最新快照，可按赛事名过滤（不区分大小写）
// GET /api/matches?competition=NBA
func (h *MatchHandler) ListMatches(c *gin.Context) {
	snapshot := h.source.Latest()
	if snapshot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "暂无可用数据"})
		return
	}

	competition := strings.TrimSpace(c.Query("competition"))
	if competition == "" {
		c.JSON(http.StatusOK, snapshot)
		return
	}

	filtered := make([]model.MergedMatch, 0, len(snapshot.Data))
	for _, m := range snapshot.Data {
		if strings.EqualFold(m.CompetitionName, competition) {
			filtered = append(filtered, m)
		}
	}
	c.JSON(http.StatusOK, &model.Snapshot{
		Success:    snapshot.Success,
		UpdateTime: snapshot.UpdateTime,
		Data:       filtered,
	})
}

// GetMatch 单场比赛及其全部节点
// GET /api/matches/:mgdb_id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	mgdbID := c.Param("mgdb_id")
	snapshot := h.source.Latest()
	if snapshot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "暂无可用数据"})
		return
	}
	for i := range snapshot.Data {
		if snapshot.Data[i].MgdbID.String() == mgdbID {
			c.JSON(http.StatusOK, snapshot.Data[i])
			return
		}
	}
	h.logger.WithField("mgdb_id", mgdbID).Debug("比赛不存在")
	c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
}
