package httpclient

import (
	"errors"
	"fmt"
)

// ErrorCode 请求失败的分类
type ErrorCode string

const (
	CodeTextFetch     ErrorCode = "TEXT_FETCH_ERROR"  // 卡牌文案请求失败
	CodeImageFetch    ErrorCode = "IMAGE_FETCH_ERROR" // 卡牌图片请求失败
	CodeChatFetch     ErrorCode = "CHAT_FETCH_ERROR"  // 追问聊天请求失败
	CodeTimeout       ErrorCode = "TIMEOUT"           // 请求超出硬超时
	CodeRequestFailed ErrorCode = "REQUEST_FAILED"    // 兜底分类，如 404、取消
)

// ApiError 重试耗尽后交给调用方的类型化错误
// Status 为 0 表示没有拿到 HTTP 响应（网络错误、超时、取消）
type ApiError struct {
	Code    ErrorCode
	Message string
	Status  int
	Err     error
}

// Error 实现 error 接口
func (e *ApiError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s [status:%d]", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap 暴露底层错误，支持 errors.Is(err, context.Canceled) 等判断
func (e *ApiError) Unwrap() error {
	return e.Err
}

// CodeOf 提取错误分类，非 ApiError 时归入 REQUEST_FAILED
func CodeOf(err error) ErrorCode {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeRequestFailed
}
