package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"MatchSync/internal/config"

	"github.com/sirupsen/logrus"
)

// ErrStatus 非 2xx 响应
var ErrStatus = errors.New("unexpected http status")

// ErrBodyTooLarge 响应体超过上限，不截断返回
var ErrBodyTooLarge = errors.New("response body too large")

// maxBodySize 单次响应体上限
const maxBodySize = 32 << 20

// Response 一次成功请求的结果
type Response struct {
	Status int
	Body   []byte
}

// Fetcher 带固定次数重试的 GET 请求器
type Fetcher struct {
	client   *http.Client
	maxBody  int64
	attempts int
	backoff  time.Duration
	logger   *logrus.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewFetcher 根据 feeds 配置构建请求器：单次超时、总尝试次数、固定退避
func NewFetcher(cfg *config.FeedsConfig, logger *logrus.Logger) *Fetcher {
	return NewFetcherWithClient(newFeedClient(cfg, logger), cfg.RetryCount, cfg.RetryBackoff, logger)
}

// NewFetcherWithClient 使用外部 http.Client（测试用）
func NewFetcherWithClient(client *http.Client, attempts int, backoff time.Duration, logger *logrus.Logger) *Fetcher {
	if attempts <= 0 {
		attempts = 1
	}
	return &Fetcher{
		client:   client,
		maxBody:  maxBodySize,
		attempts: attempts,
		backoff:  backoff,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Get 发起 GET 请求，失败按固定间隔重试，用尽后返回最后一次错误
func (f *Fetcher) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		resp, err := f.do(ctx, rawURL, headers)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		f.logger.WithError(err).WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": fmt.Sprintf("%d/%d", attempt, f.attempts),
		}).Warn("请求失败")

		if attempt == f.attempts {
			break
		}
		if err := f.sleep(ctx, f.backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: 超过 %d 字节", ErrBodyTooLarge, f.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrStatus, resp.StatusCode, statusText(resp))
	}
	return &Response{Status: resp.StatusCode, Body: body}, nil
}

func statusText(resp *http.Response) string {
	// resp.Status 形如 "404 Not Found"
	if _, text, ok := strings.Cut(resp.Status, " "); ok {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
