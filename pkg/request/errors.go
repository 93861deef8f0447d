package request

import "github.com/tokmz/guilded/pkg/errors"

// 4000 段错误码：REST 请求相关
var (
	// ErrRequestFailed 请求失败
	ErrRequestFailed = errors.New(4001, "request failed", 500)
	// ErrTimeout 请求超时
	ErrTimeout = errors.New(4002, "request timed out", 504)
	// ErrMarshal 序列化失败
	ErrMarshal = errors.New(4003, "marshal request body failed")
	// ErrUnmarshal 反序列化失败
	ErrUnmarshal = errors.New(4004, "unmarshal response body failed")
	// ErrInvalidMethod 不支持的请求方法
	ErrInvalidMethod = errors.New(4005, "invalid method", 400)
	// ErrInvalidURL 无效的 URL
	ErrInvalidURL = errors.New(4006, "invalid url", 400)
)
