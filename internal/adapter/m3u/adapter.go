package m3u

import (
	"context"

	"MatchSync/internal/interfaces"
	"MatchSync/internal/model"
	"MatchSync/internal/playlist"
	"MatchSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

var _ interfaces.PlaylistSource = (*Adapter)(nil)

// Adapter M3U 数据源：拉取文本后交给聚合器
type Adapter struct {
	url        string
	fetcher    *httpclient.Fetcher
	aggregator *playlist.Aggregator
	logger     *logrus.Logger
}

func NewM3UAdapter(url string, fetcher *httpclient.Fetcher, aggregator *playlist.Aggregator, logger *logrus.Logger) *Adapter {
	return &Adapter{
		url:        url,
		fetcher:    fetcher,
		aggregator: aggregator,
		logger:     logger,
	}
}

// GetName 数据源名称
func (a *Adapter) GetName() string {
	return "M3U"
}

// FetchCandidates 拉取并聚合；任何失败都只记录警告并返回空集合
func (a *Adapter) FetchCandidates(ctx context.Context) *model.CandidateSet {
	if a.url == "" {
		a.logger.Warn("未配置 M3U 地址，跳过 M3U 聚合")
		return model.NewCandidateSet()
	}

	a.logger.Info("开始获取 M3U 数据...")
	resp, err := a.fetcher.Get(ctx, a.url, nil)
	if err != nil {
		a.logger.WithError(err).Warn("获取或解析 M3U 数据失败")
		return model.NewCandidateSet()
	}
	return a.aggregator.Aggregate(string(resp.Body))
}
