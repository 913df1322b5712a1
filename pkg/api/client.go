// Package api 实现对塔罗后端三个接口的类型化访问
package api

import (
	"context"
	"strings"

	"tarotreader/pkg/httpclient"
)

// 后端接口路径
const (
	PathReadingText  = "/api/reading/text"
	PathReadingImage = "/api/reading/image"
	PathChat         = "/api/chat"
)

// Client 塔罗后端客户端
type Client struct {
	baseURL string
	http    *httpclient.Client
}

// NewClient 创建后端客户端，baseURL 为后端源地址
func NewClient(baseURL string, http *httpclient.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
	}
}

// FetchCardText 请求第 index 张牌的文案，返回牌名和解读内容
func (c *Client) FetchCardText(ctx context.Context, question string, total, index int) (*CardTextResponse, error) {
	result := &CardTextResponse{}
	err := c.http.PostJSON(ctx, c.baseURL+PathReadingText, CardRequest{
		Question:           question,
		TotalCardsInSpread: total,
		CardNumberInSpread: index,
	}, result, httpclient.CodeTextFetch)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchCardImage 请求第 index 张牌的图片地址
// 以牌位为键，与文案接口共用同一个确定性的抽牌结果
func (c *Client) FetchCardImage(ctx context.Context, question string, total, index int) (*CardImageResponse, error) {
	result := &CardImageResponse{}
	err := c.http.PostJSON(ctx, c.baseURL+PathReadingImage, CardRequest{
		Question:           question,
		TotalCardsInSpread: total,
		CardNumberInSpread: index,
	}, result, httpclient.CodeImageFetch)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchChatReply 发送针对某张牌的追问，previous 为该牌此前的完整对话
func (c *Client) FetchChatReply(ctx context.Context, cardID, userMessage string, previous []ChatTurn) (string, error) {
	result := &ChatResponse{}
	err := c.http.PostJSON(ctx, c.baseURL+PathChat, ChatRequest{
		CardID:           cardID,
		UserMessage:      userMessage,
		PreviousMessages: previous,
	}, result, httpclient.CodeChatFetch)
	if err != nil {
		return "", err
	}
	return result.Response, nil
}
