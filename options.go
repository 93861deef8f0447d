package guilded

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/pkg/logger"
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/pkg/ws"
)

// RESTOptions REST 管线配置
type RESTOptions struct {
	// BaseURL API 地址，默认 https://www.guilded.gg/api/v1
	BaseURL string

	// Host 覆盖 Host 请求头
	Host string

	// UserAgent 请求 User-Agent
	UserAgent string

	// RequestTimeout 单次请求超时，默认 15 秒
	RequestTimeout time.Duration

	// LatencyThreshold 时钟偏移告警阈值，默认 30 秒
	LatencyThreshold time.Duration

	// RatelimiterOffset 延迟统计的初始样本
	RatelimiterOffset time.Duration

	// DisableLatencyCompensation 不统计请求延迟
	DisableLatencyCompensation bool

	// Transport 自定义 HTTP Transport
	Transport http.RoundTripper

	// Tracing 为每次请求创建 span
	Tracing bool
}

// ClientOptions 客户端配置
type ClientOptions struct {
	// CollectionLimits 子集合上限
	CollectionLimits structures.Limits

	// Compress 启用 zlib 流压缩
	Compress bool

	// Encoding 网关编码：json / cbor
	Encoding string

	// Reconnect 断线自动重连
	Reconnect bool

	// ReconnectAttemptLimit 续传尝试上限，默认 1
	ReconnectAttemptLimit int

	// ReplayMissedEvents 重连时请求补发事件
	ReplayMissedEvents bool

	// ConnectionTimeout 等待 welcome 的超时
	ConnectionTimeout time.Duration

	// GatewayURL 网关地址
	GatewayURL string

	// REST 为 false 时不创建 REST 管线，所有 REST 方法返回 ErrRESTDisabled
	REST bool

	// RESTOptions REST 管线配置
	RESTOptions RESTOptions

	// HydrationMissTTL 补全失败后暂停重试的时间
	HydrationMissTTL time.Duration

	// DedupeCapacity 重放去重容量，0 关闭
	DedupeCapacity uint

	Logger  logger.Logger
	Metrics ws.Metrics
	Clock   clock.Clock
	Store   *cache.Store
	Dialer  *websocket.Dialer
}

func defaultOptions() *ClientOptions {
	return &ClientOptions{
		CollectionLimits:      structures.DefaultLimits(),
		Encoding:              "json",
		Reconnect:             true,
		ReconnectAttemptLimit: 1,
		ReplayMissedEvents:    true,
		ConnectionTimeout:     300 * time.Second,
		GatewayURL:            ws.DefaultURL,
		REST:                  true,
		HydrationMissTTL:      30 * time.Second,
		DedupeCapacity:        100000,
	}
}

// Option 客户端选项
type Option func(*ClientOptions)

// WithCollectionLimits 设置子集合上限
func WithCollectionLimits(limits structures.Limits) Option {
	return func(o *ClientOptions) { o.CollectionLimits = limits }
}

// WithCompress 启用压缩
func WithCompress(enable bool) Option {
	return func(o *ClientOptions) { o.Compress = enable }
}

// WithEncoding 设置网关编码
func WithEncoding(enc string) Option {
	return func(o *ClientOptions) { o.Encoding = enc }
}

// WithReconnect 设置是否自动重连
func WithReconnect(enable bool) Option {
	return func(o *ClientOptions) { o.Reconnect = enable }
}

// WithReconnectAttemptLimit 设置续传尝试上限
func WithReconnectAttemptLimit(n int) Option {
	return func(o *ClientOptions) { o.ReconnectAttemptLimit = n }
}

// WithReplayMissedEvents 设置是否补发事件
func WithReplayMissedEvents(enable bool) Option {
	return func(o *ClientOptions) { o.ReplayMissedEvents = enable }
}

// WithConnectionTimeout 设置首次连接超时
func WithConnectionTimeout(d time.Duration) Option {
	return func(o *ClientOptions) { o.ConnectionTimeout = d }
}

// WithGatewayURL 设置网关地址
func WithGatewayURL(url string) Option {
	return func(o *ClientOptions) { o.GatewayURL = url }
}

// WithREST 开关 REST 管线
func WithREST(enable bool) Option {
	return func(o *ClientOptions) { o.REST = enable }
}

// WithRESTOptions 设置 REST 配置
func WithRESTOptions(rest RESTOptions) Option {
	return func(o *ClientOptions) { o.RESTOptions = rest }
}

// WithHydrationMissTTL 设置补全失败缓存时间
func WithHydrationMissTTL(d time.Duration) Option {
	return func(o *ClientOptions) { o.HydrationMissTTL = d }
}

// WithDedupeCapacity 设置重放去重容量
func WithDedupeCapacity(n uint) Option {
	return func(o *ClientOptions) { o.DedupeCapacity = n }
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *ClientOptions) { o.Logger = l }
}

// WithMetrics 设置网关指标
func WithMetrics(m ws.Metrics) Option {
	return func(o *ClientOptions) { o.Metrics = m }
}

// WithClock 设置时钟，测试时替换为 mock
func WithClock(clk clock.Clock) Option {
	return func(o *ClientOptions) { o.Clock = clk }
}

// WithStore 设置共享缓存
func WithStore(s *cache.Store) Option {
	return func(o *ClientOptions) { o.Store = s }
}

// WithDialer 设置 websocket 拨号器
func WithDialer(d *websocket.Dialer) Option {
	return func(o *ClientOptions) { o.Dialer = d }
}
