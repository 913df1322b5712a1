package api

// CardRequest 按牌位请求文案/图片的统一请求体
// CardNumberInSpread 从 0 开始计数
type CardRequest struct {
	Question           string `json:"question"`
	TotalCardsInSpread int    `json:"totalCardsInSpread"`
	CardNumberInSpread int    `json:"cardNumberInSpread"`
}

// CardTextResponse 文案接口返回，id 即牌名，后续图片与聊天均以此为准
type CardTextResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// CardImageResponse 图片接口返回
// 接口也会带回 id，但调用方必须沿用文案接口返回的 id，不以此覆盖
type CardImageResponse struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// ChatTurn 聊天上下文中的一条历史消息
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 追问聊天请求体
type ChatRequest struct {
	CardID           string     `json:"cardId"`
	UserMessage      string     `json:"userMessage"`
	PreviousMessages []ChatTurn `json:"previousMessages"`
}

// ChatResponse 追问聊天返回
type ChatResponse struct {
	Response string `json:"response"`
}
