package ws

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/tokmz/guilded/pkg/logger"
)

const (
	// DefaultURL 网关地址
	DefaultURL = "wss://www.guilded.gg/websocket/v1"
	// ResumeHeader 断线续传请求头
	ResumeHeader = "guilded-last-message-id"
	// CloseReconnect 主动重连时使用的关闭码
	CloseReconnect = 4999
)

// Config 网关连接配置
type Config struct {
	URL                   string        // 网关地址
	Token                 string        // bot token
	Compress              bool          // 启用 zlib 流压缩
	Encoding              string        // json / cbor
	Reconnect             bool          // 断线自动重连
	ReconnectAttemptLimit int           // 续传尝试上限，超过后放弃续传
	ReplayMissedEvents    bool          // 重连时请求补发事件
	ConnectionTimeout     time.Duration // 首次等待 welcome 的超时
	ResetTimeout          time.Duration // 重置后的等待超时
	ReconnectInterval     time.Duration // 初始重连间隔
	MaxReconnectInterval  time.Duration // 重连间隔上限
	HandshakeTimeout      time.Duration // 握手超时
	WriteWait             time.Duration // 控制帧写超时
	Header                http.Header   // 额外握手请求头
	Dialer                *websocket.Dialer
	Clock                 clock.Clock
	Logger                logger.Logger
	Metrics               Metrics
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		URL:                   DefaultURL,
		Encoding:              "json",
		Reconnect:             true,
		ReconnectAttemptLimit: 1,
		ReplayMissedEvents:    true,
		ConnectionTimeout:     300 * time.Second,
		ResetTimeout:          30 * time.Second,
		ReconnectInterval:     10 * time.Second,
		MaxReconnectInterval:  30 * time.Second,
		HandshakeTimeout:      15 * time.Second,
		WriteWait:             5 * time.Second,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.URL == "" {
		c.URL = d.URL
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = d.ConnectionTimeout
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = d.ResetTimeout
	}
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = d.ReconnectInterval
	}
	if c.MaxReconnectInterval <= 0 {
		c.MaxReconnectInterval = d.MaxReconnectInterval
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.Dialer == nil {
		c.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: c.HandshakeTimeout,
		}
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = NoopMetrics{}
	}
}

// Option 配置选项
type Option func(*Config)

// WithURL 设置网关地址
func WithURL(url string) Option { return func(c *Config) { c.URL = url } }

// WithToken 设置 token
func WithToken(token string) Option { return func(c *Config) { c.Token = token } }

// WithCompress 启用压缩
func WithCompress(enable bool) Option { return func(c *Config) { c.Compress = enable } }

// WithEncoding 设置编码
func WithEncoding(enc string) Option { return func(c *Config) { c.Encoding = enc } }

// WithReconnect 设置自动重连
func WithReconnect(enable bool) Option { return func(c *Config) { c.Reconnect = enable } }

// WithReconnectAttemptLimit 设置续传尝试上限
func WithReconnectAttemptLimit(n int) Option {
	return func(c *Config) { c.ReconnectAttemptLimit = n }
}

// WithReplayMissedEvents 设置是否请求补发
func WithReplayMissedEvents(enable bool) Option {
	return func(c *Config) { c.ReplayMissedEvents = enable }
}

// WithConnectionTimeout 设置首次连接超时
func WithConnectionTimeout(d time.Duration) Option {
	return func(c *Config) { c.ConnectionTimeout = d }
}

// WithReconnectInterval 设置初始重连间隔与上限
func WithReconnectInterval(initial, max time.Duration) Option {
	return func(c *Config) {
		c.ReconnectInterval = initial
		c.MaxReconnectInterval = max
	}
}

// WithClock 设置时钟
func WithClock(clk clock.Clock) Option { return func(c *Config) { c.Clock = clk } }

// WithLogger 设置日志器
func WithLogger(l logger.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithMetrics 设置监控
func WithMetrics(m Metrics) Option { return func(c *Config) { c.Metrics = m } }

// WithDialer 设置自定义 Dialer
func WithDialer(d *websocket.Dialer) Option { return func(c *Config) { c.Dialer = d } }
