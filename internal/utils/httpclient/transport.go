package httpclient

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MatchSync/internal/config"

	"github.com/sirupsen/logrus"
)

// feedTransport 拉取上游数据的传输层：单次请求超时、gzip 解压、响应耗时日志
type feedTransport struct {
	base    http.RoundTripper
	timeout time.Duration
	logger  *logrus.Logger
}

// newFeedClient 按 feeds 配置构建客户端。超时挂在每次请求上，重试间隔不计入
func newFeedClient(cfg *config.FeedsConfig, logger *logrus.Logger) *http.Client {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		// gzip 由 feedTransport 自行声明和解压
		DisableCompression: true,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("代理地址解析失败，将不使用代理")
		} else {
			base.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", proxyURL.Redacted()).Info("上游请求已配置代理")
		}
	}

	return &http.Client{Transport: &feedTransport{base: base, timeout: cfg.Timeout, logger: logger}}
}

func (t *feedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := req.Context(), context.CancelFunc(func() {})
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
	}
	req = req.Clone(ctx)
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		cancel()
		return nil, err
	}
	t.logger.WithFields(logrus.Fields{
		"url":     req.URL.Redacted(),
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("上游已响应")

	body := resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			_ = body.Close()
			cancel()
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		body = &gzipBody{Reader: gz, raw: body}
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
		resp.Uncompressed = true
	}
	// 超时覆盖到响应体读完为止
	resp.Body = &cancelBody{ReadCloser: body, cancel: cancel}
	return resp, nil
}

type gzipBody struct {
	*gzip.Reader
	raw io.ReadCloser
}

func (g *gzipBody) Close() error {
	err := g.Reader.Close()
	if rawErr := g.raw.Close(); err == nil {
		err = rawErr
	}
	return err
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelBody) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
