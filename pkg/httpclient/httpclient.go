// Package httpclient 封装对塔罗后端的 JSON 请求
// 提供硬超时、指数退避重试、出站限流和类型化的错误翻译
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"tarotreader/pkg/logger"
)

// 默认配置，与前端历史版本的 API_CONFIG 对齐
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 2
	DefaultRetryWait    = 1 * time.Second
	DefaultRetryMaxWait = 5 * time.Second
)

// Options 客户端配置
type Options struct {
	Timeout      time.Duration // 覆盖所有重试的硬超时
	MaxRetries   int           // 首次失败后的最大重试次数
	RetryWait    time.Duration // 重试退避起始等待，按指数增长
	RetryMaxWait time.Duration // 重试退避等待上限
	RateLimit    rate.Limit    // 出站限流，0 表示不限
	Burst        int           // 限流突发量
}

// Client 带重试的 JSON 请求客户端
// 重试策略：网络错误或非 2xx 状态（404 除外）时重试，
// 等待时间从 RetryWait 起指数增长，封顶 RetryMaxWait
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// New 创建客户端实例
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = DefaultRetryWait
	}
	if opts.RetryMaxWait <= 0 {
		opts.RetryMaxWait = DefaultRetryMaxWait
	}

	client := resty.New().
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 网络错误重试，上下文取消/超时由 resty 内部终止
			if err != nil {
				return true
			}
			// 404 视为确定性的"不存在"，不重试
			if r.StatusCode() == http.StatusNotFound {
				return false
			}
			return !r.IsSuccess()
		})

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RateLimit)
			if burst < 1 {
				burst = 1
			}
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	return &Client{
		resty:   client,
		limiter: limiter,
		timeout: opts.Timeout,
	}
}

// PostJSON 发送一次 JSON POST 请求并把 2xx 响应体解析到 result
// failCode 是该请求失败时使用的错误分类（超时与 404 有各自的分类）
// 除网络调用外无任何副作用，失败的处理完全交给调用方
func (c *Client) PostJSON(ctx context.Context, rawURL string, body interface{}, result interface{}, failCode ErrorCode) error {
	// 出站限流
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.translate(err, nil, failCode)
		}
	}

	// 硬超时覆盖所有重试
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(rawURL)

	if err != nil {
		logger.ErrorString("HttpClient", "Request", fmt.Sprintf(
			"请求失败 URL:%s 耗时:%v 错误:%v", rawURL, time.Since(start), err))
		return c.translate(err, resp, failCode)
	}

	logger.DebugString("HttpClient", "Request", fmt.Sprintf(
		"请求完成 URL:%s 状态:%d 耗时:%v 重试:%d",
		rawURL, resp.StatusCode(), time.Since(start), resp.Request.Attempt-1))

	if resp.StatusCode() == http.StatusNotFound {
		return &ApiError{
			Code:    CodeRequestFailed,
			Message: "resource not found",
			Status:  http.StatusNotFound,
		}
	}
	if !resp.IsSuccess() {
		return &ApiError{
			Code:    failCode,
			Message: fmt.Sprintf("unexpected status: %s", resp.Status()),
			Status:  resp.StatusCode(),
		}
	}
	return nil
}

// translate 把传输层错误翻译为类型化的 ApiError
func (c *Client) translate(err error, resp *resty.Response, failCode ErrorCode) error {
	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &ApiError{Code: CodeTimeout, Message: "request timeout", Status: status, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ApiError{Code: CodeRequestFailed, Message: "request canceled", Status: status, Err: err}
	}
	return &ApiError{Code: failCode, Message: err.Error(), Status: status, Err: err}
}

// isTimeout 判断底层网络错误是否超时
func isTimeout(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
