package migu

import (
	"context"
	"errors"
	"fmt"

	"MatchSync/internal/config"
	"MatchSync/internal/interfaces"
	"MatchSync/internal/model"
	"MatchSync/internal/utils/httpclient"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// ErrMissingMatchList 赛程响应缺少 body.matchList
var ErrMissingMatchList = errors.New("赛程数据缺少 body.matchList")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	_ interfaces.ScheduleSource = (*Adapter)(nil)
	_ interfaces.NodeSource     = (*Adapter)(nil)
)

// Adapter 咪咕赛程与节点接口
type Adapter struct {
	cfg     *config.FeedsConfig
	fetcher *httpclient.Fetcher
	logger  *logrus.Logger
}

func NewMiguAdapter(cfg *config.FeedsConfig, fetcher *httpclient.Fetcher, logger *logrus.Logger) *Adapter {
	return &Adapter{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetName 数据源名称
func (a *Adapter) GetName() string {
	return "Migu"
}

// FetchMatchList 拉取赛程列表；请求失败或结构不符时返回错误，由调用方终止本次运行
func (a *Adapter) FetchMatchList(ctx context.Context) (map[string][]model.ScheduledMatch, error) {
	resp, err := a.fetcher.Get(ctx, a.cfg.ScheduleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("获取赛程失败: %w", err)
	}

	var list model.MatchListResponse
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("解析赛程失败: %w", err)
	}
	if list.Body == nil || list.Body.MatchList == nil {
		return nil, ErrMissingMatchList
	}

	a.logger.WithField("dates", len(list.Body.MatchList)).Info("主数据获取成功")
	return list.Body.MatchList, nil
}

// FetchNodeDocument 拉取单场比赛节点原始文档，携带配置中的固定请求头
func (a *Adapter) FetchNodeDocument(ctx context.Context, mgdbID string) (*model.NodeDocument, error) {
	resp, err := a.fetcher.Get(ctx, a.cfg.NodeURL(mgdbID), a.cfg.Headers)
	if err != nil {
		return nil, fmt.Errorf("获取节点数据失败: %w", err)
	}

	var doc model.NodeDocument
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("解析节点数据失败: %w", err)
	}
	return &doc, nil
}
