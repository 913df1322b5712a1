package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newInitializedStore 按牌阵初始化好的 Store，测试辅助
func newInitializedStore(t *testing.T, spread Spread) *Store {
	t.Helper()
	store := NewStore()
	store.SetQuestion("What lies ahead?")
	store.SetSpread(spread)
	store.InitializeSpread(spread.Size())
	return store
}

func TestInitializeSpread(t *testing.T) {
	tests := []struct {
		spread Spread
		size   int
	}{
		{SpreadDestiny, 3},
		{SpreadCruz, 4},
		{SpreadLove, 2},
	}

	for _, tt := range tests {
		store := newInitializedStore(t, tt.spread)
		snap := store.Snapshot()

		require.Len(t, snap.Cards, tt.size, "spread %s", tt.spread)
		assert.Equal(t, tt.size, snap.SpreadSize)
		assert.True(t, snap.IsInitializing)
		assert.Empty(t, snap.GlobalError)

		// 每个牌位都是占位初始形态
		for i, card := range snap.Cards {
			assert.Equal(t, i, card.Index)
			assert.Empty(t, card.ID)
			assert.Empty(t, card.Text)
			assert.Empty(t, card.ImageURL)
			assert.True(t, card.Status.IsLoading)
			assert.False(t, card.Status.HasLoadedText)
			assert.False(t, card.Status.HasLoadedImage)
			assert.Nil(t, card.Status.Err)
			assert.Empty(t, card.Messages)
		}
	}
}

func TestUpdateCardDataTextOnly(t *testing.T) {
	store := newInitializedStore(t, SpreadDestiny)

	store.UpdateCardData(0, CardData{ID: "the-fool", Text: "New beginnings"})

	card, ok := store.Card(0)
	require.True(t, ok)
	assert.Equal(t, "the-fool", card.ID)
	assert.Equal(t, "New beginnings", card.Text)
	assert.True(t, card.Status.HasLoadedText)
	// 文字到达不应影响图片状态
	assert.False(t, card.Status.HasLoadedImage)
	assert.True(t, card.Status.IsLoading)
	assert.True(t, store.Snapshot().IsInitializing)
}

func TestUpdateCardDataTextAndImage(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)

	// 一次调用同时带文字和图片，牌位直接到达终态
	store.UpdateCardData(0, CardData{ID: "the-sun", Text: "joy", ImageURL: "https://x/sun.jpg"})

	card, _ := store.Card(0)
	assert.False(t, card.Status.IsLoading)
	assert.True(t, card.Status.HasLoadedText)
	assert.True(t, card.Status.HasLoadedImage)
}

func TestUpdateCardDataKeepsTextDerivedID(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)

	store.UpdateCardData(0, CardData{ID: "the-fool", Text: "New beginnings"})
	// 图片落库时不携带 id，不覆盖文案接口返回的 id
	store.UpdateCardData(0, CardData{ImageURL: "https://x/fool.jpg"})

	card, _ := store.Card(0)
	assert.Equal(t, "the-fool", card.ID)
	assert.Equal(t, "https://x/fool.jpg", card.ImageURL)
}

func TestUpdateCardDataClearsMatchingError(t *testing.T) {
	store := newInitializedStore(t, SpreadDestiny)

	store.SetCardError(0, ErrTypeTextLoad, "boom")
	store.UpdateCardData(0, CardData{ID: "death", Text: "an ending"})

	card, _ := store.Card(0)
	assert.Nil(t, card.Status.Err, "文字到达应清除 TEXT_LOAD 错误")

	// 图片错误不被文字更新清除
	store.SetCardError(1, ErrTypeImageLoad, "boom")
	store.UpdateCardData(1, CardData{Text: "t"})
	card, _ = store.Card(1)
	require.NotNil(t, card.Status.Err)
	assert.Equal(t, ErrTypeImageLoad, card.Status.Err.Type)
}

func TestSetCardErrorIsTerminal(t *testing.T) {
	store := newInitializedStore(t, SpreadDestiny)

	store.SetCardError(1, ErrTypeTextLoad, "network down")

	card, _ := store.Card(1)
	require.NotNil(t, card.Status.Err)
	assert.Equal(t, ErrTypeTextLoad, card.Status.Err.Type)
	assert.Equal(t, "network down", card.Status.Err.Message)
	assert.False(t, card.Status.Err.Timestamp.IsZero())
	// 出错的牌位不再处于加载中，也不再阻塞全局初始化
	assert.False(t, card.Status.IsLoading)
}

func TestIsInitializingAnyCompletionOrder(t *testing.T) {
	store := newInitializedStore(t, SpreadDestiny)

	// 乱序到达：2 先完成，0 出错，1 最后完成
	store.UpdateCardData(2, CardData{Text: "t", ImageURL: "u"})
	assert.True(t, store.Snapshot().IsInitializing)

	store.SetCardError(0, ErrTypeTextLoad, "x")
	assert.True(t, store.Snapshot().IsInitializing)

	store.UpdateCardData(1, CardData{Text: "t", ImageURL: "u"})
	assert.False(t, store.Snapshot().IsInitializing)
}

func TestClearCardError(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)

	store.SetCardError(0, ErrTypeChat, "oops")
	store.ClearCardError(0)

	card, _ := store.Card(0)
	assert.Nil(t, card.Status.Err)
}

func TestInvalidIndexMutations(t *testing.T) {
	store := newInitializedStore(t, SpreadDestiny)
	before := store.Snapshot()

	tests := []struct {
		name string
		fn   func()
	}{
		{"UpdateCardData", func() { store.UpdateCardData(7, CardData{Text: "x"}) }},
		{"UpdateCardStatus", func() { store.UpdateCardStatus(-1, StatusPatch{IsLoading: BoolPtr(false)}) }},
		{"SetCardError", func() { store.SetCardError(99, ErrTypeTextLoad, "x") }},
		{"ClearCardError", func() { store.ClearCardError(3) }},
		{"AddMessage", func() { store.AddMessage(5, RoleUser, "hola") }},
	}

	for _, tt := range tests {
		tt.fn()
		snap := store.Snapshot()
		// 越界只记录会话级错误，已有牌位保持原样
		assert.Contains(t, snap.GlobalError, "Invalid index", tt.name)
		assert.Equal(t, before.Cards, snap.Cards, tt.name)
	}
}

func TestUpdateCardStatusPatch(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)

	store.UpdateCardStatus(0, StatusPatch{
		IsLoading:     BoolPtr(false),
		HasLoadedText: BoolPtr(true),
	})

	card, _ := store.Card(0)
	assert.False(t, card.Status.IsLoading)
	assert.True(t, card.Status.HasLoadedText)
	// 未指定的字段保持不变
	assert.False(t, card.Status.HasLoadedImage)
}

func TestAddMessage(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)
	store.UpdateCardData(0, CardData{ID: "the-star", Text: "hope"})

	store.AddMessage(0, RoleUser, "what does it mean?")
	store.AddMessage(0, RoleAssistant, "hope, mi amor")

	card, _ := store.Card(0)
	require.Len(t, card.Messages, 2)
	assert.Equal(t, RoleUser, card.Messages[0].Role)
	assert.Equal(t, RoleAssistant, card.Messages[1].Role)
	assert.Equal(t, "the-star", card.Messages[0].CardID)
	assert.False(t, card.Messages[0].Timestamp.IsZero())

	// 其他牌位的消息互不可见
	other, _ := store.Card(1)
	assert.Empty(t, other.Messages)
}

func TestReset(t *testing.T) {
	store := newInitializedStore(t, SpreadCruz)
	store.UpdateCardData(0, CardData{Text: "t"})
	store.SetGlobalError("boom")

	store.Reset()

	snap := store.Snapshot()
	assert.Empty(t, snap.Question)
	assert.Zero(t, snap.SpreadSize)
	assert.Empty(t, snap.Cards)
	assert.False(t, snap.IsInitializing)
	assert.Empty(t, snap.GlobalError)
}

func TestGuardedDropsStaleWrites(t *testing.T) {
	store := newInitializedStore(t, SpreadDestiny)
	gen := store.Generation()

	// 模拟请求在途时用户重开一局
	store.Reset()
	store.InitializeSpread(2)

	ok := store.Guarded(gen, func(tx *Tx) {
		tx.UpdateCardData(0, CardData{Text: "stale"})
	})

	assert.False(t, ok, "过期世代的写入应被拒绝")
	card, found := store.Card(0)
	require.True(t, found)
	assert.Empty(t, card.Text)
}

func TestGuardedAppliesCurrentGeneration(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)
	gen := store.Generation()

	ok := store.Guarded(gen, func(tx *Tx) {
		tx.UpdateCardData(1, CardData{ID: "justice", Text: "balance"})
	})

	assert.True(t, ok)
	card, _ := store.Card(1)
	assert.Equal(t, "justice", card.ID)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	store := newInitializedStore(t, SpreadLove)
	store.UpdateCardData(0, CardData{ID: "the-moon", Text: "fears"})
	store.AddMessage(0, RoleUser, "hola")

	snap := store.Snapshot()
	snap.Cards[0].Text = "mutated"
	snap.Cards[0].Messages[0].Content = "mutated"

	card, _ := store.Card(0)
	assert.Equal(t, "fears", card.Text)
	assert.Equal(t, "hola", card.Messages[0].Content)
}
