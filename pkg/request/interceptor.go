package request

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/logger"
)

// Interceptor 拦截器接口
type Interceptor interface {
	// BeforeRequest 每次尝试发送前调用
	BeforeRequest(ctx context.Context, req *http.Request) error
	// AfterResponse 每次收到响应后调用（包括 429/502）
	AfterResponse(ctx context.Context, resp *Response) error
}

type loggingInterceptor struct {
	log logger.Logger
}

// NewLoggingInterceptor 创建日志拦截器
func NewLoggingInterceptor(log logger.Logger) Interceptor {
	return &loggingInterceptor{log: log}
}

func (l *loggingInterceptor) BeforeRequest(ctx context.Context, req *http.Request) error {
	l.log.DebugContext(ctx, "rest request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)
	return nil
}

func (l *loggingInterceptor) AfterResponse(ctx context.Context, resp *Response) error {
	l.log.DebugContext(ctx, "rest response",
		zap.String("method", resp.Request.Method),
		zap.String("url", resp.Request.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)
	return nil
}

// HeaderFunc 动态请求头拦截器
type HeaderFunc func(ctx context.Context) map[string]string

func (f HeaderFunc) BeforeRequest(ctx context.Context, req *http.Request) error {
	for k, v := range f(ctx) {
		req.Header.Set(k, v)
	}
	return nil
}

func (f HeaderFunc) AfterResponse(context.Context, *Response) error { return nil }
