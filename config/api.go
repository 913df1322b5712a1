package config

import "tarotreader/pkg/config"

func init() {
	config.Add("api", func() map[string]interface{} {
		return map[string]interface{}{

			// 塔罗后端的源地址，未设置时回退到本地开发地址
			"base_url": config.Env("BACKEND_URL", ""),

			// 本地开发回退地址
			"fallback_url": "http://localhost:8000",

			// 单次请求的硬超时，单位：秒
			"timeout": config.Env("API_TIMEOUT", 30),

			// 失败后的最大重试次数（404 不重试）
			"max_retries": config.Env("API_MAX_RETRIES", 2),

			// 重试退避的起始等待，单位：毫秒，按指数增长
			"retry_wait": config.Env("API_RETRY_WAIT", 1000),

			// 重试退避的等待上限，单位：毫秒
			"retry_max_wait": config.Env("API_RETRY_MAX_WAIT", 5000),

			// 客户端出站限流，每秒请求数
			"rate_limit": config.Env("API_RATE_LIMIT", 10),
		}
	})
}
