// stubd 本地联调用的塔罗后端桩服务
// 与真实后端暴露同样的三个接口，返回确定性的罐头数据
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tarotreader/bootstrap"
	btsConfig "tarotreader/config"
	"tarotreader/pkg/config"
)

// 加载应用程序的基础配置
func init() {
	btsConfig.Initialize()
}

func main() {
	var env string
	flag.StringVar(&env, "env", "", "加载 .env 文件，例如 --env=testing 将加载 .env.testing 文件")
	flag.Parse()

	// 初始化配置与日志
	config.InitConfig(env)
	bootstrap.SetupLogger()

	// 设置 gin 为生产模式，减少不必要的日志输出
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	bootstrap.SetupRoute(router)

	server := &http.Server{
		Addr:    ":" + config.Get("stub.port", "8000"),
		Handler: router,
	}

	// 创建系统信号监听器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("桩服务正在启动，监听端口 %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("桩服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	<-quit
	log.Println("正在关闭桩服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("桩服务关闭异常: %v", err)
	}

	log.Println("桩服务已成功关闭")
}
