package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/SmartFleetSync/SmartFleetSync/internal/common/breaker"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/logger"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/ratelimit"
	"github.com/SmartFleetSync/SmartFleetSync/internal/source"
)

const pageSize = 100

// Client Airtable 风格 REST API 的 TableReader 实现。
// 认证用 Bearer Token；翻页用响应里的 offset 游标。
type Client struct {
	baseURL    string
	baseID     string
	token      string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	breaker    *breaker.CircuitBreaker
	log        logger.Logger
}

// Options 客户端可调参数
type Options struct {
	Timeout       time.Duration
	RatePerSecond int64
	MaxFailures   int
}

// NewClient 创建数据源客户端
func NewClient(baseURL, baseID, token string, opts Options, log logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	return &Client{
		baseURL:    baseURL,
		baseID:     baseID,
		token:      token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    ratelimit.NewTokenBucket(opts.RatePerSecond, opts.RatePerSecond),
		breaker:    breaker.New("source-api", opts.MaxFailures, 30*time.Second),
		log:        log,
	}
}

// listResponse 单页响应
type listResponse struct {
	Records []struct {
		ID          string                 `json:"id"`
		CreatedTime string                 `json:"createdTime"`
		Fields      map[string]interface{} `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// ListRecords 拉取一张逻辑表的全部记录（内部翻页直到 offset 为空）。
// 整表拉取失败向上返回 error，由提取器决定降级策略。
func (c *Client) ListRecords(ctx context.Context, table string) ([]source.Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if table == "" {
		return nil, fmt.Errorf("table name is empty")
	}

	var out []source.Record
	offset := ""
	for {
		page, next, err := c.fetchPage(ctx, table, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch table %q: %w", table, err)
		}
		out = append(out, page...)
		if next == "" {
			break
		}
		offset = next
	}

	if c.log != nil {
		c.log.WithFields(map[string]interface{}{
			"table": table,
			"count": len(out),
		}).Debug("source table fetched")
	}
	return out, nil
}

// fetchPage 拉取一页，经过限流器和熔断器。
func (c *Client) fetchPage(ctx context.Context, table, offset string) ([]source.Record, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	var records []source.Record
	var next string
	err := c.breaker.Call(ctx, func() error {
		var innerErr error
		records, next, innerErr = c.doFetch(ctx, table, offset)
		return innerErr
	})
	if err != nil {
		return nil, "", err
	}
	return records, next, nil
}

func (c *Client) doFetch(ctx context.Context, table, offset string) ([]source.Record, string, error) {
	return c.doFetchAttempt(ctx, table, offset, true)
}

func (c *Client) doFetchAttempt(ctx context.Context, table, offset string, retryOn429 bool) ([]source.Record, string, error) {
	u := fmt.Sprintf("%s/%s/%s?pageSize=%d",
		c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table), pageSize)
	if offset != "" {
		u += "&offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	// 源端限速：等一秒重试一次，仍不行就算整表失败
	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		if !retryOn429 {
			return nil, "", fmt.Errorf("source rate limited: status=%d", resp.StatusCode)
		}
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Second):
		}
		return c.doFetchAttempt(ctx, table, offset, false)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, "", fmt.Errorf("source auth failed: status=%d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("source returned status=%d body=%s", resp.StatusCode, string(body))
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, "", fmt.Errorf("decode source response: %w", err)
	}

	records := make([]source.Record, 0, len(lr.Records))
	for _, r := range lr.Records {
		records = append(records, source.Record{
			ID:          r.ID,
			CreatedTime: r.CreatedTime,
			Fields:      r.Fields,
		})
	}
	return records, lr.Offset, nil
}
