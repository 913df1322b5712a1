package bootstrap

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"tarotreader/pkg/api"
	"tarotreader/pkg/config"
	"tarotreader/pkg/httpclient"
	"tarotreader/pkg/logger"
)

// SetupAPI 初始化塔罗后端客户端
// 后端源地址取自 BACKEND_URL，未设置时回退到本地开发地址并告警
func SetupAPI() *api.Client {
	baseURL := config.GetString("api.base_url")
	if baseURL == "" {
		baseURL = config.GetString("api.fallback_url", "http://localhost:8000")
		logger.WarnString("API", "Config", fmt.Sprintf(
			"BACKEND_URL 未设置，回退到本地开发地址 %s", baseURL))
	}

	client := httpclient.New(httpclient.Options{
		Timeout:      time.Duration(config.GetInt("api.timeout", 30)) * time.Second,
		MaxRetries:   config.GetInt("api.max_retries", 2),
		RetryWait:    time.Duration(config.GetInt("api.retry_wait", 1000)) * time.Millisecond,
		RetryMaxWait: time.Duration(config.GetInt("api.retry_max_wait", 5000)) * time.Millisecond,
		RateLimit:    rate.Limit(config.GetFloat64("api.rate_limit", 10)),
	})

	logger.InfoString("API", "Setup", fmt.Sprintf(
		"后端客户端初始化完成 [BaseURL: %s, Timeout: %ds, MaxRetries: %d]",
		baseURL, config.GetInt("api.timeout", 30), config.GetInt("api.max_retries", 2)))

	return api.NewClient(baseURL, client)
}
