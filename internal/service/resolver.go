package service

import (
	"context"

	"MatchSync/internal/interfaces"
	"MatchSync/internal/model"

	"github.com/sirupsen/logrus"
)

// nodeSuccessCode 节点接口成功码
const nodeSuccessCode = 200

// NodeResolver 拉取单场比赛节点并按 回放 → 直播 → 预告 的顺序去重
type NodeResolver struct {
	source interfaces.NodeSource
	logger *logrus.Logger
}

func NewNodeResolver(source interfaces.NodeSource, logger *logrus.Logger) *NodeResolver {
	return &NodeResolver{source: source, logger: logger}
}

// Resolve 返回去重后的节点列表；任何失败都降级为空列表，ok=false 仅用于统计
func (r *NodeResolver) Resolve(ctx context.Context, mgdbID string) ([]model.PlayableNode, bool) {
	doc, err := r.source.FetchNodeDocument(ctx, mgdbID)
	if err != nil {
		r.logger.WithError(err).WithField("mgdb_id", mgdbID).Warn("获取节点数据失败")
		return []model.PlayableNode{}, false
	}
	if doc == nil || doc.Code != nodeSuccessCode || doc.Body == nil || doc.Body.MultiPlayList == nil {
		r.logger.WithField("mgdb_id", mgdbID).Warn("节点数据缺少 body.multiPlayList 或返回码异常")
		return []model.PlayableNode{}, false
	}
	if skipped := doc.Body.MultiPlayList.Skipped; skipped > 0 {
		r.logger.WithFields(logrus.Fields{"mgdb_id": mgdbID, "skipped": skipped}).Debug("跳过格式错误的节点条目")
	}
	return MergeNodeLists(doc.Body.MultiPlayList), true
}

// MergeNodeLists 按固定优先级合并三类节点，pID|name 首次出现者保留
func MergeNodeLists(mpl *model.MultiPlayList) []model.PlayableNode {
	nodes := []model.PlayableNode{}
	if mpl == nil {
		return nodes
	}

	seen := make(map[string]struct{})
	for _, list := range [][]model.NodeItem{mpl.ReplayList, mpl.LiveList, mpl.PreList} {
		for _, item := range list {
			node := model.PlayableNode{PID: item.PID, Name: item.Name.String()}
			key := node.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			nodes = append(nodes, node)
		}
	}
	return nodes
}
