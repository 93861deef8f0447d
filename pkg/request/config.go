package request

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tokmz/guilded/pkg/logger"
)

const (
	// DefaultBaseURL REST API 地址
	DefaultBaseURL = "https://www.guilded.gg/api/v1"
	// DefaultUserAgent 默认 User-Agent
	DefaultUserAgent = "guilded-go (https://github.com/tokmz/guilded, 0.1.0)"
)

// Config REST 客户端配置
type Config struct {
	BaseURL                    string            // API 地址
	Token                      string            // 默认 bearer token
	UserAgent                  string            // User-Agent
	Host                       string            // 覆盖 Host 头
	Timeout                    time.Duration     // 单次请求超时（默认 15s，0 不限制）
	LatencyThreshold           time.Duration     // 时钟偏移告警阈值（默认 30s）
	RatelimiterOffset          time.Duration     // 初始延迟样本
	DisableLatencyCompensation bool              // 不统计请求延迟
	Retry                      *RetryConfig      // 502 重试配置
	Headers                    map[string]string // 全局请求头
	Interceptors               []Interceptor     // 拦截器链
	Logger                     logger.Logger     // 日志器
	EnableTracing              bool              // 启用 OpenTelemetry 追踪
	Transport                  http.RoundTripper // 自定义 Transport
	Clock                      clock.Clock       // 时钟（测试可替换）
	OnError                    func(error)       // 无法返回给调用方的错误（响应解析失败等）
	OnWarn                     func(string)      // 告警（时钟偏移）
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		UserAgent:        DefaultUserAgent,
		Timeout:          15 * time.Second,
		LatencyThreshold: 30 * time.Second,
		Retry:            DefaultRetryConfig(),
		Headers:          make(map[string]string),
	}
}

func (c *Config) normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.LatencyThreshold == 0 {
		c.LatencyThreshold = 30 * time.Second
	}
	if c.Retry == nil {
		c.Retry = DefaultRetryConfig()
	}
	c.Retry.normalize()
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
}

func (c *Config) buildTransport() http.RoundTripper {
	t := c.Transport
	if t == nil {
		t = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	if c.EnableTracing {
		t = newTracingTransport(t)
	}
	return t
}

// Option 配置选项函数
type Option func(*Config)

// WithBaseURL 设置 API 地址
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithToken 设置默认 token
func WithToken(token string) Option {
	return func(c *Config) { c.Token = token }
}

// WithUserAgent 设置 User-Agent
func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

// WithHost 覆盖 Host 头
func WithHost(host string) Option {
	return func(c *Config) { c.Host = host }
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLatencyThreshold 设置时钟偏移告警阈值
func WithLatencyThreshold(d time.Duration) Option {
	return func(c *Config) { c.LatencyThreshold = d }
}

// WithRatelimiterOffset 设置初始延迟
func WithRatelimiterOffset(d time.Duration) Option {
	return func(c *Config) { c.RatelimiterOffset = d }
}

// WithLatencyCompensation 是否统计请求延迟
func WithLatencyCompensation(enable bool) Option {
	return func(c *Config) { c.DisableLatencyCompensation = !enable }
}

// WithRetry 设置 502 重试配置
func WithRetry(cfg *RetryConfig) Option {
	return func(c *Config) { c.Retry = cfg }
}

// WithHeader 设置全局请求头
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[key] = value
	}
}

// WithInterceptor 添加拦截器
func WithInterceptor(i Interceptor) Option {
	return func(c *Config) { c.Interceptors = append(c.Interceptors, i) }
}

// WithLogger 设置日志器
func WithLogger(l logger.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTracing 启用 OpenTelemetry 追踪
func WithTracing(enable bool) Option {
	return func(c *Config) { c.EnableTracing = enable }
}

// WithTransport 设置自定义 Transport
func WithTransport(t http.RoundTripper) Option {
	return func(c *Config) { c.Transport = t }
}

// WithClock 设置时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Config) { c.Clock = clk }
}

// WithOnError 设置错误回调
func WithOnError(fn func(error)) Option {
	return func(c *Config) { c.OnError = fn }
}

// WithOnWarn 设置告警回调
func WithOnWarn(fn func(string)) Option {
	return func(c *Config) { c.OnWarn = fn }
}
