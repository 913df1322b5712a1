package reading_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarotreader/app/chat"
	"tarotreader/app/reading"
	"tarotreader/pkg/api"
	"tarotreader/pkg/httpclient"
	"tarotreader/routes"
)

// TestFullReadingAgainstStub 把客户端核心接到真实的桩路由上跑完整一局
func TestFullReadingAgainstStub(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.RegisterAPIRoutes(router)

	server := httptest.NewServer(router)
	defer server.Close()

	hc := httpclient.New(httpclient.Options{
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		RetryWait:    10 * time.Millisecond,
		RetryMaxWait: 50 * time.Millisecond,
	})
	client := api.NewClient(server.URL, hc)

	store := reading.NewStore()
	store.SetQuestion("Will the garden bloom this year?")
	store.SetSpread(reading.SpreadCruz)

	result, err := reading.NewController(store, client).Start(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 4, result.Total)

	snap := store.Snapshot()
	require.Len(t, snap.Cards, 4)
	assert.False(t, snap.IsInitializing)

	seen := map[string]bool{}
	for _, card := range snap.Cards {
		assert.Contains(t, reading.MajorArcana, card.ID)
		assert.False(t, seen[card.ID], "重复抽到 %s", card.ID)
		seen[card.ID] = true

		assert.NotEmpty(t, card.Text)
		assert.True(t, strings.HasSuffix(card.ImageURL, card.ID+".jpg"),
			"图片地址 %s 应指向牌 %s", card.ImageURL, card.ID)
		assert.True(t, card.Status.HasLoadedText)
		assert.True(t, card.Status.HasLoadedImage)
		assert.Nil(t, card.Status.Err)
	}

	// 针对第一张牌追问两轮
	chatCtl := chat.NewController(store, client)
	require.NoError(t, chatCtl.SendMessage(context.Background(), 0, "what does it mean for me?"))
	require.NoError(t, chatCtl.SendMessage(context.Background(), 0, "and what should I avoid?"))

	card, _ := store.Card(0)
	require.Len(t, card.Messages, 4)
	assert.Equal(t, reading.RoleUser, card.Messages[0].Role)
	assert.Equal(t, reading.RoleAssistant, card.Messages[1].Role)
	assert.NotEmpty(t, card.Messages[3].Content)
}
