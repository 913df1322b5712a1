package routes

import (
	"github.com/gin-gonic/gin"

	"tarotreader/app/http/controllers/stub"
	"tarotreader/app/http/middlewares"
)

// 路由限流配置
const (
	// 全局限流：每小时每IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 文案/图片接口限流：每分钟每IP 300 请求
	CardDataLimit = "300-M"
	// 聊天接口限流：每分钟每IP 100 请求
	ChatLimit = "100-M"
)

// RegisterAPIRoutes 注册桩服务的所有 API 路由
// 路径与真实后端完全一致，前端无需改配置即可切换
func RegisterAPIRoutes(r *gin.Engine) {
	rc := stub.NewReadingController()

	api := r.Group("/api")
	api.Use(
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	// 解读相关路由
	readingRoutes := api.Group("/reading")
	{
		// POST /api/reading/text 按牌位返回文案
		readingRoutes.POST("/text",
			middlewares.LimitPerRoute(CardDataLimit),
			rc.Text,
		)

		// POST /api/reading/image 按牌位返回图片地址
		readingRoutes.POST("/image",
			middlewares.LimitPerRoute(CardDataLimit),
			rc.Image,
		)
	}

	// POST /api/chat 针对单张牌的追问
	api.POST("/chat",
		middlewares.LimitPerRoute(ChatLimit),
		rc.Chat,
	)

	// 健康检查
	r.GET("/healthz", rc.HealthCheck)
}
