package reading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tarotreader/pkg/api"
	"tarotreader/pkg/logger"
)

var (
	// ErrAlreadyStarted 获取流程只允许启动一次
	ErrAlreadyStarted = errors.New("reading already started")
	// ErrEmptyQuestion 空问题不能开始解读
	ErrEmptyQuestion = errors.New("question must not be empty")
	// ErrUnknownSpread 未知牌阵
	ErrUnknownSpread = errors.New("unknown spread")
)

// Result 一次获取流程结束后的汇总诊断
// 单张牌的失败以牌位错误呈现给用户，这里只做聚合统计
type Result struct {
	Total  int
	Failed int
	Errors []error
}

// Controller 解读获取控制器，核心状态机
//
// 启动后按牌阵张数初始化 Store，然后并发地为每张牌拉取文案和图片：
// 牌内保证先文案后图片，文案失败则跳过图片；牌间不保证完成顺序，
// 后面的牌失败不会阻塞或回滚前面已加载的数据。
type Controller struct {
	store   *Store
	api     *api.Client
	started atomic.Bool
}

// NewController 创建获取控制器
func NewController(store *Store, client *api.Client) *Controller {
	return &Controller{
		store: store,
		api:   client,
	}
}

// Started 获取流程是否已经启动过
func (c *Controller) Started() bool {
	return c.started.Load()
}

// Start 启动获取流程并阻塞到所有牌位到达终态
//
// 一次性闩锁：重复调用返回 ErrAlreadyStarted，重复的触发事件不会
// 造成重复请求。ctx 取消（界面卸载）后恢复的请求一律不再写入 Store。
func (c *Controller) Start(ctx context.Context) (*Result, error) {
	if !c.started.CompareAndSwap(false, true) {
		logger.WarnString("Reading", "Start", "获取流程已启动，忽略重复触发")
		return nil, ErrAlreadyStarted
	}

	snap := c.store.Snapshot()
	if strings.TrimSpace(snap.Question) == "" {
		return nil, ErrEmptyQuestion
	}
	if !snap.Spread.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpread, snap.Spread)
	}

	size := snap.Spread.Size()
	c.store.InitializeSpread(size)
	gen := c.store.Generation()

	logger.InfoString("Reading", "Start", fmt.Sprintf(
		"开始解读 牌阵:%s 张数:%d 问题:%s", snap.Spread, size, snap.Question))

	var mu sync.Mutex
	result := &Result{Total: size}

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < size; i++ {
		i := i
		eg.Go(func() error {
			if err := c.loadCard(egCtx, gen, snap.Question, size, i); err != nil {
				mu.Lock()
				result.Failed++
				result.Errors = append(result.Errors, err)
				mu.Unlock()
			}
			// 单张牌失败不取消其余的牌，错误始终返回 nil
			return nil
		})
	}
	_ = eg.Wait()

	logger.InfoString("Reading", "Done", fmt.Sprintf(
		"解读获取完成 总数:%d 失败:%d", result.Total, result.Failed))
	return result, nil
}

// loadCard 加载单张牌：先文案，成功后再图片
// 每个网络恢复点之后的写入都要过世代号校验，取消后直接放弃
func (c *Controller) loadCard(ctx context.Context, gen uint64, question string, size, index int) error {
	text, err := c.api.FetchCardText(ctx, question, size, index)
	if err != nil {
		if ctx.Err() != nil {
			// 已取消：吞掉迟到的结果，不写入 Store
			return nil
		}
		c.store.Guarded(gen, func(tx *Tx) {
			tx.SetCardError(index, ErrTypeTextLoad, err.Error())
		})
		// 文案是图片的前置条件，这里直接终止本张牌
		return fmt.Errorf("card %d text: %w", index, err)
	}

	// 文案先落库；会话已被重置时放弃整张牌
	if !c.store.Guarded(gen, func(tx *Tx) {
		tx.UpdateCardData(index, CardData{ID: text.ID, Text: text.Text})
	}) {
		return nil
	}

	img, err := c.api.FetchCardImage(ctx, question, size, index)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// 图片失败不影响已加载的文字，有文无图是合法的展示状态
		c.store.Guarded(gen, func(tx *Tx) {
			tx.SetCardError(index, ErrTypeImageLoad, err.Error())
		})
		return fmt.Errorf("card %d image: %w", index, err)
	}

	// 沿用文案接口返回的 id，忽略图片接口带回的 id
	c.store.Guarded(gen, func(tx *Tx) {
		tx.UpdateCardData(index, CardData{ImageURL: img.ImageURL})
	})
	return nil
}
