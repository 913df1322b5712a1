package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarotreader/pkg/httpclient"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	hc := httpclient.New(httpclient.Options{
		Timeout:      2 * time.Second,
		MaxRetries:   0,
		RetryWait:    5 * time.Millisecond,
		RetryMaxWait: 20 * time.Millisecond,
	})
	return NewClient(server.URL, hc), server
}

func TestFetchCardText(t *testing.T) {
	var gotPath string
	var gotBody CardRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "the-fool", "text": "New beginnings"})
	}))
	defer server.Close()

	resp, err := client.FetchCardText(context.Background(), "What lies ahead?", 3, 0)
	require.NoError(t, err)

	assert.Equal(t, PathReadingText, gotPath)
	assert.Equal(t, "What lies ahead?", gotBody.Question)
	assert.Equal(t, 3, gotBody.TotalCardsInSpread)
	assert.Equal(t, 0, gotBody.CardNumberInSpread)
	assert.Equal(t, "the-fool", resp.ID)
	assert.Equal(t, "New beginnings", resp.Text)
}

func TestFetchCardImage(t *testing.T) {
	var gotBody CardRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathReadingImage, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "the-fool", "imageUrl": "https://x/fool.jpg"})
	}))
	defer server.Close()

	resp, err := client.FetchCardImage(context.Background(), "What lies ahead?", 3, 0)
	require.NoError(t, err)

	// 图片请求与文案请求同键，保证命中同一次抽牌
	assert.Equal(t, "What lies ahead?", gotBody.Question)
	assert.Equal(t, 3, gotBody.TotalCardsInSpread)
	assert.Equal(t, 0, gotBody.CardNumberInSpread)
	assert.Equal(t, "https://x/fool.jpg", resp.ImageURL)
}

func TestFetchChatReply(t *testing.T) {
	var gotBody ChatRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathChat, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "hope"})
	}))
	defer server.Close()

	previous := []ChatTurn{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
	}
	reply, err := client.FetchChatReply(context.Background(), "the-star", "and now?", previous)
	require.NoError(t, err)

	assert.Equal(t, "hope", reply)
	assert.Equal(t, "the-star", gotBody.CardID)
	assert.Equal(t, "and now?", gotBody.UserMessage)
	assert.Equal(t, previous, gotBody.PreviousMessages)
}

func TestErrorCodesPerEndpoint(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.FetchCardText(context.Background(), "q", 3, 0)
	assert.Equal(t, httpclient.CodeTextFetch, httpclient.CodeOf(err))

	_, err = client.FetchCardImage(context.Background(), "q", 3, 0)
	assert.Equal(t, httpclient.CodeImageFetch, httpclient.CodeOf(err))

	_, err = client.FetchChatReply(context.Background(), "the-star", "q", nil)
	assert.Equal(t, httpclient.CodeChatFetch, httpclient.CodeOf(err))
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"id": "x", "text": "y"})
	}))
	defer server.Close()

	hc := httpclient.New(httpclient.Options{Timeout: 2 * time.Second})
	client := NewClient(server.URL+"/", hc)

	_, err := client.FetchCardText(context.Background(), "q", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, PathReadingText, gotPath)
}
