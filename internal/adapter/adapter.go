package adapter

import (
	"MatchSync/internal/adapter/m3u"
	"MatchSync/internal/adapter/migu"
	"MatchSync/internal/config"
	"MatchSync/internal/playlist"
	"MatchSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Sources 同步所需的三个上游数据源，共用同一个带重试的 Fetcher
type Sources struct {
	Migu     *migu.Adapter // 赛程 + 单场节点
	Playlist *m3u.Adapter  // M3U 候选
}

// NewSources 按配置构建数据源
func NewSources(cfg *config.Config, logger *logrus.Logger) *Sources {
	fetcher := httpclient.NewFetcher(&cfg.Feeds, logger)

	rules := playlist.DefaultRules()
	if cfg.Playlist.GroupPrefix != "" {
		rules.GroupPrefix = cfg.Playlist.GroupPrefix
	}
	if len(cfg.Playlist.DaySuffixes) > 0 {
		rules.DaySuffixes = cfg.Playlist.DaySuffixes
	}

	s := &Sources{
		Migu:     migu.NewMiguAdapter(&cfg.Feeds, fetcher, logger),
		Playlist: m3u.NewM3UAdapter(cfg.Feeds.PlaylistURL, fetcher, playlist.NewAggregator(rules, logger), logger),
	}
	logger.WithFields(logrus.Fields{
		"schedule": s.Migu.GetName(),
		"playlist": s.Playlist.GetName(),
	}).Info("数据源初始化完成")
	return s
}
