package status

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tokmz/guilded/pkg/logger"
)

// Config 状态服务配置
type Config struct {
	// Mode gin 运行模式：debug, release, test
	Mode string

	// Addr 监听地址，默认 ":9090"
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout 优雅关机超时，默认 10 秒
	ShutdownTimeout time.Duration

	// Health 健康检查，返回非 nil 时 /healthz 响应 503
	Health func() error

	// Stats /stats 返回的运行状态
	Stats func() any

	// Gatherer /metrics 使用的指标源，默认 prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Tracing 是否为请求创建 Server Span
	Tracing bool

	Logger logger.Logger
}

// Option 配置选项函数
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		Mode:            gin.ReleaseMode,
		Addr:            ":9090",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// WithMode 设置运行模式
func WithMode(mode string) Option {
	return func(c *Config) { c.Mode = mode }
}

// WithAddr 设置监听地址
func WithAddr(addr string) Option {
	return func(c *Config) {
		if addr != "" {
			c.Addr = addr
		}
	}
}

// WithShutdownTimeout 设置关机超时
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) { c.ShutdownTimeout = d }
}

// WithHealth 设置健康检查
func WithHealth(fn func() error) Option {
	return func(c *Config) { c.Health = fn }
}

// WithStats 设置运行状态来源
func WithStats(fn func() any) Option {
	return func(c *Config) { c.Stats = fn }
}

// WithGatherer 设置指标源
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) { c.Gatherer = g }
}

// WithTracing 开启请求追踪
func WithTracing(enabled bool) Option {
	return func(c *Config) { c.Tracing = enabled }
}

// WithLogger 设置日志
func WithLogger(log logger.Logger) Option {
	return func(c *Config) { c.Logger = log }
}
