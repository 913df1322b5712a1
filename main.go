package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"tarotreader/app/chat"
	"tarotreader/app/reading"
	"tarotreader/bootstrap"
	btsConfig "tarotreader/config"
	"tarotreader/pkg/config"
)

// 加载应用程序的基础配置
func init() {
	// 加载 config 目录下的配置信息
	btsConfig.Initialize()
}

func main() {
	var (
		env      string
		question string
		spread   string
		ask      string
		askCard  int
	)
	flag.StringVar(&env, "env", "", "加载 .env 文件，例如 --env=testing 将加载 .env.testing 文件")
	flag.StringVar(&question, "question", "", "想要求问的问题")
	flag.StringVar(&spread, "spread", string(reading.SpreadDestiny), "牌阵：Destiny、Cruz 或 Love")
	flag.StringVar(&ask, "ask", "", "解读完成后对某张牌的追问（可选）")
	flag.IntVar(&askCard, "card", 0, "追问针对的牌位，从 0 开始")
	flag.Parse()

	// 初始化配置与日志
	config.InitConfig(env)
	bootstrap.SetupLogger()

	if question == "" {
		log.Fatal("缺少 -question 参数，无法开始解读")
	}

	spreadKind, err := reading.ParseSpread(spread)
	if err != nil {
		log.Fatalf("无效的牌阵 %q，可选：Destiny、Cruz、Love", spread)
	}

	// 初始化后端客户端
	client := bootstrap.SetupAPI()

	// Ctrl-C 时取消在途请求，控制器保证取消后不再写入状态
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 组装会话状态与获取控制器
	store := reading.NewStore()
	store.SetQuestion(question)
	store.SetSpread(spreadKind)

	controller := reading.NewController(store, client)
	result, err := controller.Start(ctx)
	if err != nil {
		log.Fatalf("解读启动失败: %v", err)
	}

	printReading(store, result)

	// 可选的追问
	if ask != "" {
		chatController := chat.NewController(store, client)
		if err := chatController.SendMessage(ctx, askCard, ask); err != nil {
			log.Fatalf("追问失败: %v", err)
		}
		printMessages(store, askCard)
	}
}

// printReading 打印每张牌的解读结果
func printReading(store *reading.Store, result *reading.Result) {
	snap := store.Snapshot()

	fmt.Printf("问题：%s\n牌阵：%s（%d 张）\n\n", snap.Question, snap.Spread, snap.SpreadSize)
	for _, card := range snap.Cards {
		if card.Status.Err != nil {
			fmt.Printf("[%d] 加载失败（%s）：%s\n", card.Index, card.Status.Err.Type, card.Status.Err.Message)
			// 有文无图时文字仍然可读
			if card.Status.HasLoadedText {
				fmt.Printf("    %s\n    %s\n", card.ID, card.Text)
			}
			continue
		}
		fmt.Printf("[%d] %s\n    %s\n    图片：%s\n", card.Index, card.ID, card.Text, card.ImageURL)
	}

	if result.Failed > 0 {
		fmt.Printf("\n%d/%d 张牌加载失败，详见各牌位错误信息\n", result.Failed, result.Total)
	}
}

// printMessages 打印某张牌的完整对话
func printMessages(store *reading.Store, cardIndex int) {
	card, ok := store.Card(cardIndex)
	if !ok {
		return
	}

	fmt.Printf("\n—— 牌位 %d 的对话 ——\n", cardIndex)
	for _, m := range card.Messages {
		fmt.Printf("%s: %s\n", m.Role, m.Content)
	}
}
