package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"tarotreader/app/reading"
)

// CardDataRequest 按牌位请求文案或图片
type CardDataRequest struct {
	Question           string `json:"question" valid:"question"`
	TotalCardsInSpread int    `json:"totalCardsInSpread" valid:"totalCardsInSpread"`
	CardNumberInSpread int    `json:"cardNumberInSpread"`
}

// ChatTurn 请求中携带的一条历史消息
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatMessageRequest 针对某张牌的追问
type ChatMessageRequest struct {
	CardID           string     `json:"cardId" valid:"cardId"`
	UserMessage      string     `json:"userMessage" valid:"userMessage"`
	PreviousMessages []ChatTurn `json:"previousMessages"`
}

// ValidateCardData 验证文案/图片请求
func ValidateCardData(c *gin.Context) (*CardDataRequest, error) {
	rules := govalidator.MapData{
		"question":           []string{"required", "min:1"},
		"totalCardsInSpread": []string{"required"},
	}

	messages := govalidator.MapData{
		"question": []string{
			"required:问题不能为空",
			"min:问题长度不能小于 1 个字符",
		},
		"totalCardsInSpread": []string{
			"required:牌阵张数不能为空",
		},
	}

	req, err := ValidateRequest[CardDataRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}

	// 额外的牌位验证
	if req.TotalCardsInSpread < 1 || req.TotalCardsInSpread > len(reading.MajorArcana) {
		return nil, fmt.Errorf("无效的牌阵张数: %d", req.TotalCardsInSpread)
	}
	if req.CardNumberInSpread < 0 || req.CardNumberInSpread >= req.TotalCardsInSpread {
		return nil, fmt.Errorf("无效的牌位: %d", req.CardNumberInSpread)
	}

	return &req, nil
}

// ValidateChatMessage 验证追问请求
func ValidateChatMessage(c *gin.Context) (*ChatMessageRequest, error) {
	rules := govalidator.MapData{
		"cardId":      []string{"required"},
		"userMessage": []string{"required", "min:1"},
	}

	messages := govalidator.MapData{
		"cardId": []string{
			"required:cardId 不能为空",
		},
		"userMessage": []string{
			"required:userMessage 不能为空",
			"min:userMessage 长度不能小于 1 个字符",
		},
	}

	req, err := ValidateRequest[ChatMessageRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}

	return &req, nil
}
