package config

import "tarotreader/pkg/config"

func init() {
	config.Add("stub", func() map[string]interface{} {
		return map[string]interface{}{

			// 本地联调桩服务端口，与前端默认的 http://localhost:8000 对齐
			"port": config.Env("STUB_PORT", "8000"),

			// 桩服务返回图片地址的基础 URL
			"image_base_url": config.Env("STUB_IMAGE_BASE_URL", "https://cards.tarotreader.local"),

			// 抽牌结果的缓存时长，单位：分钟。同一问题在有效期内抽到相同的牌
			"reading_cache_minutes": config.Env("STUB_READING_CACHE_MINUTES", 30),
		}
	})
}
