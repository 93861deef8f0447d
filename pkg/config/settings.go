package config

import (
	"time"

	"github.com/tokmz/guilded/pkg/logger"
	"github.com/tokmz/guilded/pkg/tracing"
)

// Settings 客户端配置
type Settings struct {
	Token       string           `mapstructure:"token"`
	REST        RESTSettings     `mapstructure:"rest"`
	Gateway     GatewaySettings  `mapstructure:"gateway"`
	Collections CollectionLimits `mapstructure:"collections"`
	Log         LogSettings      `mapstructure:"log"`
	Tracing     tracing.Config   `mapstructure:"tracing"`
	Status      StatusSettings   `mapstructure:"status"`
}

// RESTSettings REST 请求配置
type RESTSettings struct {
	Disabled                   bool          `mapstructure:"disabled"`
	BaseURL                    string        `mapstructure:"base_url"`
	Host                       string        `mapstructure:"host"`
	UserAgent                  string        `mapstructure:"user_agent"`
	Timeout                    time.Duration `mapstructure:"timeout"`
	LatencyThreshold           time.Duration `mapstructure:"latency_threshold"`
	RatelimiterOffset          time.Duration `mapstructure:"ratelimiter_offset"`
	DisableLatencyCompensation bool          `mapstructure:"disable_latency_compensation"`
}

// GatewaySettings 网关配置
type GatewaySettings struct {
	URL                   string        `mapstructure:"url"`
	Compress              bool          `mapstructure:"compress"`
	Encoding              string        `mapstructure:"encoding"` // json/cbor
	Reconnect             bool          `mapstructure:"reconnect"`
	ReconnectAttemptLimit int           `mapstructure:"reconnect_attempt_limit"`
	ReplayMissedEvents    bool          `mapstructure:"replay_missed_events"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// CollectionLimits 各类缓存集合上限，-1 不限制，0 不缓存
type CollectionLimits struct {
	Docs                 int `mapstructure:"docs"`
	Messages             int `mapstructure:"messages"`
	ScheduledEvents      int `mapstructure:"scheduled_events"`
	ScheduledEventsRSVPs int `mapstructure:"scheduled_events_rsvps"`
	TopicComments        int `mapstructure:"topic_comments"`
	Topics               int `mapstructure:"topics"`
}

// LogSettings 日志配置
type LogSettings struct {
	Level  string               `mapstructure:"level"`
	Format string               `mapstructure:"format"`
	File   string               `mapstructure:"file"`
	Rotate *logger.RotateConfig `mapstructure:"rotate"`
}

// StatusSettings 状态服务配置（健康检查与指标）
type StatusSettings struct {
	Addr string `mapstructure:"addr"`
}

// LoggerConfig 转换为 logger.Config
func (l LogSettings) LoggerConfig() (*logger.Config, error) {
	level, err := logger.ParseLevel(l.Level)
	if err != nil {
		return nil, ErrConfigInvalid.WithError(err)
	}
	cfg := &logger.Config{
		Level:  level,
		Format: logger.Format(l.Format),
		File:   l.File,
		Rotate: l.Rotate,
	}
	if l.Rotate != nil && l.Rotate.Filename == "" {
		cfg.Rotate = nil
	}
	return cfg, nil
}

// Validate 校验
func (s *Settings) Validate() error {
	if s.Gateway.Encoding != "json" && s.Gateway.Encoding != "cbor" {
		return ErrConfigInvalid.WithMessage("config: gateway.encoding must be json or cbor")
	}
	if s.REST.Timeout < 0 {
		return ErrConfigInvalid.WithMessage("config: rest.timeout must not be negative")
	}
	if s.Gateway.ReconnectAttemptLimit < 0 {
		return ErrConfigInvalid.WithMessage("config: gateway.reconnect_attempt_limit must not be negative")
	}
	return nil
}

// defaultValues 默认配置（扁平键）
func defaultValues() map[string]any {
	return map[string]any{
		"token": "",

		"rest.disabled":                     false,
		"rest.base_url":                     "https://www.guilded.gg/api/v1",
		"rest.host":                         "",
		"rest.user_agent":                   "",
		"rest.timeout":                      15 * time.Second,
		"rest.latency_threshold":            30 * time.Second,
		"rest.ratelimiter_offset":           time.Duration(0),
		"rest.disable_latency_compensation": false,

		"gateway.url":                     "wss://www.guilded.gg/websocket/v1",
		"gateway.compress":                false,
		"gateway.encoding":                "json",
		"gateway.reconnect":               true,
		"gateway.reconnect_attempt_limit": 1,
		"gateway.replay_missed_events":    true,
		"gateway.connection_timeout":      300 * time.Second,

		"collections.docs":                   100,
		"collections.messages":               100,
		"collections.scheduled_events":       100,
		"collections.scheduled_events_rsvps": 100,
		"collections.topic_comments":         100,
		"collections.topics":                 100,

		"log.level":  "info",
		"log.format": "json",
		"log.file":   "",

		"tracing.enabled":      false,
		"tracing.service_name": "guilded-bot",
		"tracing.environment":  "development",
		"tracing.exporter":     "stdout",
		"tracing.endpoint":     "",
		"tracing.insecure":     false,
		"tracing.sample_rate":  1.0,

		"status.addr": "",
	}
}
