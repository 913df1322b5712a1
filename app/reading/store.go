// Package reading 实现一次塔罗解读的共享状态与获取流程
package reading

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tarotreader/pkg/logger"
)

// Role 聊天消息的角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage 针对某张牌的一条聊天消息，只追加、不修改
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CardID    string    `json:"card_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CardErrorType 牌级错误的分类
type CardErrorType string

const (
	ErrTypeTextLoad  CardErrorType = "TEXT_LOAD"
	ErrTypeImageLoad CardErrorType = "IMAGE_LOAD"
	ErrTypeChat      CardErrorType = "CHAT"
)

// CardError 牌级错误，仅作展示用途，可被清除
type CardError struct {
	Type      CardErrorType `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// CardStatus 单张牌的加载状态
// 不变量：IsLoading == false 时要么文字和图片都已加载，要么 Err 非空
type CardStatus struct {
	IsLoading      bool       `json:"is_loading"`
	HasLoadedText  bool       `json:"has_loaded_text"`
	HasLoadedImage bool       `json:"has_loaded_image"`
	Err            *CardError `json:"error,omitempty"`
}

// Card 牌阵中的一个牌位
type Card struct {
	Index    int           `json:"index"`
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	ImageURL string        `json:"image_url"`
	Status   CardStatus    `json:"status"`
	Messages []ChatMessage `json:"messages"`
}

// CardData 牌位数据的部分更新，空字段表示不更新
type CardData struct {
	ID       string
	Text     string
	ImageURL string
}

// StatusPatch 牌位状态的部分更新，nil 字段表示不更新
type StatusPatch struct {
	IsLoading      *bool
	HasLoadedText  *bool
	HasLoadedImage *bool
}

// Session 一次解读的完整状态快照
type Session struct {
	ID             string `json:"id"`
	Question       string `json:"question"`
	Spread         Spread `json:"spread"`
	SpreadSize     int    `json:"spread_size"`
	Cards          []Card `json:"cards"`
	IsInitializing bool   `json:"is_initializing"`
	GlobalError    string `json:"global_error,omitempty"`
}

// Store 解读状态的唯一可信来源
//
// 所有读写都经过这里。每次 InitializeSpread / Reset 会递增世代号，
// 悬挂在网络请求上的旧写入通过 Guarded 校验世代号后被丢弃，
// 防止上一次解读的迟到响应污染新会话。
type Store struct {
	mu         sync.RWMutex
	generation uint64
	session    Session
}

// NewStore 创建空会话的 Store
func NewStore() *Store {
	return &Store{
		session: Session{
			ID:     uuid.New().String(),
			Spread: SpreadDestiny,
		},
	}
}

// Generation 返回当前世代号，配合 Guarded 使用
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Snapshot 返回当前会话的深拷贝，调用方可任意持有
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Card 返回指定牌位的深拷贝
func (s *Store) Card(index int) (Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.session.Cards) {
		return Card{}, false
	}
	return copyCard(s.session.Cards[index]), true
}

// SetQuestion 设置用户的问题，问题在解读开始后不再变化
func (s *Store) SetQuestion(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Question = q
}

// SetSpread 设置牌阵
func (s *Store) SetSpread(spread Spread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Spread = spread
}

// InitializeSpread 用 n 个占位牌位重建牌阵并进入初始化状态
// 世代号随之递增，之前在途请求的写入都会失效
func (s *Store) InitializeSpread(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializeSpreadLocked(n)
}

// UpdateCardData 合并牌位数据：
// 文字到达时置 HasLoadedText 并清除 TEXT_LOAD 错误，
// 图片到达时置 HasLoadedImage 并清除 IMAGE_LOAD 错误，
// 再重算牌位的 IsLoading 和会话的 IsInitializing
func (s *Store) UpdateCardData(index int, data CardData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCardDataLocked(index, data)
}

// UpdateCardStatus 合并牌位状态并重算 IsInitializing
func (s *Store) UpdateCardStatus(index int, patch StatusPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCardStatusLocked(index, patch)
}

// SetCardError 给牌位盖上一个带新鲜时间戳的错误
// 出错的牌位视为终态，不再阻塞全局初始化
func (s *Store) SetCardError(index int, errType CardErrorType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCardErrorLocked(index, errType, message)
}

// ClearCardError 清除牌位上的错误
func (s *Store) ClearCardError(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCardErrorLocked(index)
}

// SetGlobalError 设置会话级错误，空串表示清除
func (s *Store) SetGlobalError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.GlobalError = message
}

// AddMessage 向牌位追加一条聊天消息，时间戳由这里生成
func (s *Store) AddMessage(index int, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMessageLocked(index, role, content)
}

// Reset 恢复到初始空会话，供用户发起新的解读
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.session = Session{
		ID:     uuid.New().String(),
		Spread: SpreadDestiny,
	}
}

// Tx 持锁状态下的受保护写入入口，仅在 Guarded 回调中有效
type Tx struct {
	s *Store
}

// UpdateCardData 同 Store.UpdateCardData
func (tx *Tx) UpdateCardData(index int, data CardData) {
	tx.s.updateCardDataLocked(index, data)
}

// UpdateCardStatus 同 Store.UpdateCardStatus
func (tx *Tx) UpdateCardStatus(index int, patch StatusPatch) {
	tx.s.updateCardStatusLocked(index, patch)
}

// SetCardError 同 Store.SetCardError
func (tx *Tx) SetCardError(index int, errType CardErrorType, message string) {
	tx.s.setCardErrorLocked(index, errType, message)
}

// ClearCardError 同 Store.ClearCardError
func (tx *Tx) ClearCardError(index int) {
	tx.s.clearCardErrorLocked(index)
}

// AddMessage 同 Store.AddMessage
func (tx *Tx) AddMessage(index int, role Role, content string) {
	tx.s.addMessageLocked(index, role, content)
}

// Guarded 活性保护的写入：持锁校验世代号，匹配时执行 fn 并返回 true，
// 不匹配说明会话已被重置或重建，写入整体丢弃并返回 false。
// 网络请求恢复之后的一切 Store 写入都必须走这里。
func (s *Store) Guarded(gen uint64, fn func(tx *Tx)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		logger.DebugString("Reading", "Guarded", fmt.Sprintf(
			"丢弃过期写入 世代:%d 当前:%d", gen, s.generation))
		return false
	}
	fn(&Tx{s: s})
	return true
}

/* ------------------ 持锁实现 ------------------ */

func (s *Store) initializeSpreadLocked(n int) {
	s.generation++
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{
			Index: i,
			Status: CardStatus{
				IsLoading: true,
			},
			Messages: []ChatMessage{},
		}
	}
	s.session.SpreadSize = n
	s.session.Cards = cards
	s.session.IsInitializing = true
	s.session.GlobalError = ""
}

func (s *Store) updateCardDataLocked(index int, data CardData) {
	if !s.validIndexLocked(index, "update card") {
		return
	}

	card := &s.session.Cards[index]
	if data.ID != "" {
		card.ID = data.ID
	}
	if data.Text != "" {
		card.Text = data.Text
		card.Status.HasLoadedText = true
		if card.Status.Err != nil && card.Status.Err.Type == ErrTypeTextLoad {
			card.Status.Err = nil
		}
	}
	if data.ImageURL != "" {
		card.ImageURL = data.ImageURL
		card.Status.HasLoadedImage = true
		if card.Status.Err != nil && card.Status.Err.Type == ErrTypeImageLoad {
			card.Status.Err = nil
		}
	}

	card.Status.IsLoading = !(card.Status.HasLoadedText && card.Status.HasLoadedImage)
	s.recomputeInitializingLocked()
	s.session.GlobalError = ""
}

func (s *Store) updateCardStatusLocked(index int, patch StatusPatch) {
	if !s.validIndexLocked(index, "update card status") {
		return
	}

	status := &s.session.Cards[index].Status
	if patch.IsLoading != nil {
		status.IsLoading = *patch.IsLoading
	}
	if patch.HasLoadedText != nil {
		status.HasLoadedText = *patch.HasLoadedText
	}
	if patch.HasLoadedImage != nil {
		status.HasLoadedImage = *patch.HasLoadedImage
	}
	s.recomputeInitializingLocked()
	s.session.GlobalError = ""
}

func (s *Store) setCardErrorLocked(index int, errType CardErrorType, message string) {
	if !s.validIndexLocked(index, "set error for card") {
		return
	}

	card := &s.session.Cards[index]
	card.Status.Err = &CardError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
	}
	card.Status.IsLoading = false
	s.recomputeInitializingLocked()
}

func (s *Store) clearCardErrorLocked(index int) {
	if !s.validIndexLocked(index, "clear error for card") {
		return
	}
	s.session.Cards[index].Status.Err = nil
}

func (s *Store) addMessageLocked(index int, role Role, content string) {
	if !s.validIndexLocked(index, "add message to card") {
		return
	}

	card := &s.session.Cards[index]
	card.Messages = append(card.Messages, ChatMessage{
		Role:      role,
		Content:   content,
		CardID:    card.ID,
		Timestamp: time.Now(),
	})
	s.session.GlobalError = ""
}

// validIndexLocked 校验牌位下标
// 越界时只记录会话级错误，既不 panic 也不做其他修改
func (s *Store) validIndexLocked(index int, action string) bool {
	if index >= 0 && index < len(s.session.Cards) {
		return true
	}
	s.session.GlobalError = fmt.Sprintf("Failed to %s %d: Invalid index", action, index)
	logger.WarnString("Reading", "Store", s.session.GlobalError)
	return false
}

// recomputeInitializingLocked 只要还有牌位在加载中，会话就处于初始化状态
func (s *Store) recomputeInitializingLocked() {
	for i := range s.session.Cards {
		if s.session.Cards[i].Status.IsLoading {
			s.session.IsInitializing = true
			return
		}
	}
	s.session.IsInitializing = false
}

func (s *Store) snapshotLocked() Session {
	out := s.session
	out.Cards = make([]Card, len(s.session.Cards))
	for i, card := range s.session.Cards {
		out.Cards[i] = copyCard(card)
	}
	return out
}

// copyCard 深拷贝单个牌位，消息切片和错误都不共享底层存储
func copyCard(card Card) Card {
	out := card
	out.Messages = append([]ChatMessage(nil), card.Messages...)
	if card.Status.Err != nil {
		errCopy := *card.Status.Err
		out.Status.Err = &errCopy
	}
	return out
}

// BoolPtr 构造 StatusPatch 的辅助函数
func BoolPtr(b bool) *bool {
	return &b
}
