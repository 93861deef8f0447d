package ratelimit

import "github.com/benbjohnson/clock"

type options struct {
	clock          clock.Clock
	latency        *LatencyRef
	reservedTokens int
}

// Option 桶配置选项
type Option func(*options)

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLatencyRef 设置共享延迟引用
func WithLatencyRef(l *LatencyRef) Option {
	return func(o *options) { o.latency = l }
}

// WithReservedTokens 设置为优先任务预留的令牌数
func WithReservedTokens(n int) Option {
	return func(o *options) { o.reservedTokens = n }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.latency == nil {
		o.latency = NewLatencyRef(0)
	}
	return o
}
