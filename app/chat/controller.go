// Package chat 实现针对单张牌的追问聊天
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tarotreader/app/reading"
	"tarotreader/pkg/api"
	"tarotreader/pkg/logger"
)

var (
	// ErrEmptyMessage 空白消息直接拒绝
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrInvalidCard 牌位不存在
	ErrInvalidCard = errors.New("invalid card index")
	// ErrBusy 同一张牌已有在途消息
	ErrBusy = errors.New("another message is in flight for this card")
)

// Error 聊天的本地错误状态，挂在控制器上而不是 Store 里
type Error struct {
	Message   string
	Timestamp time.Time
}

// Controller 聊天控制器，与加载流程互不干扰，只共享 Store
//
// 并发契约：同一张牌同时只允许一条在途消息，后来的调用被拒绝
// 而不是排队。用户消息乐观追加，失败时保留在历史里，不回滚。
type Controller struct {
	store *reading.Store
	api   *api.Client

	mu      sync.Mutex
	pending map[int]bool
	errs    map[int]*Error
}

// NewController 创建聊天控制器
func NewController(store *reading.Store, client *api.Client) *Controller {
	return &Controller{
		store:   store,
		api:     client,
		pending: make(map[int]bool),
		errs:    make(map[int]*Error),
	}
}

// Status 返回某张牌的聊天状态：是否有在途消息、最近一次错误
func (c *Controller) Status(cardIndex int) (bool, *Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[cardIndex], c.errs[cardIndex]
}

// SendMessage 向某张牌发起追问并阻塞到回复落库或失败
func (c *Controller) SendMessage(ctx context.Context, cardIndex int, content string) error {
	if strings.TrimSpace(content) == "" {
		c.setError(cardIndex, "message must not be empty")
		return ErrEmptyMessage
	}

	card, ok := c.store.Card(cardIndex)
	if !ok {
		c.setError(cardIndex, fmt.Sprintf("card %d does not exist", cardIndex))
		return ErrInvalidCard
	}

	if !c.acquire(cardIndex) {
		logger.WarnString("Chat", "SendMessage", fmt.Sprintf(
			"牌位 %d 已有在途消息，本次发送被拒绝", cardIndex))
		return ErrBusy
	}
	defer c.release(cardIndex)

	// 历史消息在乐观追加之前截取，请求体不包含本条
	previous := make([]api.ChatTurn, 0, len(card.Messages))
	for _, m := range card.Messages {
		previous = append(previous, api.ChatTurn{Role: string(m.Role), Content: m.Content})
	}

	gen := c.store.Generation()

	// 乐观追加用户消息，之后无论成败都不回滚
	c.store.AddMessage(cardIndex, reading.RoleUser, content)

	reply, err := c.api.FetchChatReply(ctx, card.ID, content, previous)
	if err != nil {
		if ctx.Err() != nil {
			// 已取消：不再改动任何状态
			return err
		}
		c.setError(cardIndex, err.Error())
		logger.ErrorString("Chat", "SendMessage", fmt.Sprintf(
			"牌位 %d 聊天失败: %v", cardIndex, err))
		return err
	}

	// 会话已被重置时丢弃迟到的回复
	c.store.Guarded(gen, func(tx *reading.Tx) {
		tx.AddMessage(cardIndex, reading.RoleAssistant, reply)
	})
	return nil
}

// acquire 占用牌位的在途槽位，已占用时返回 false
func (c *Controller) acquire(cardIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[cardIndex] {
		return false
	}
	c.pending[cardIndex] = true
	delete(c.errs, cardIndex)
	return true
}

func (c *Controller) release(cardIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, cardIndex)
}

func (c *Controller) setError(cardIndex int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[cardIndex] = &Error{
		Message:   message,
		Timestamp: time.Now(),
	}
}
