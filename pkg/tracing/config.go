package tracing

import (
	"fmt"
	"time"
)

// Config 链路追踪配置
type Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`

	Exporter string            `mapstructure:"exporter"` // otlp/stdout/noop
	Endpoint string            `mapstructure:"endpoint"` // OTLP HTTP 端点，空则读取 OTEL_EXPORTER_OTLP_ENDPOINT
	Headers  map[string]string `mapstructure:"headers"`
	Insecure bool              `mapstructure:"insecure"`

	SampleRate float64 `mapstructure:"sample_rate"` // 0.0-1.0，按父 span 决策

	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxQueueSize int           `mapstructure:"max_queue_size"`
}

// DefaultConfig 返回默认配置（默认关闭）
func DefaultConfig() *Config {
	return &Config{
		ServiceName:  "guilded-bot",
		Environment:  "development",
		Exporter:     "stdout",
		SampleRate:   1.0,
		BatchTimeout: 5 * time.Second,
		MaxQueueSize: 2048,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("tracing: service name is required")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("tracing: sample rate must be between 0 and 1, got %v", c.SampleRate)
	}
	switch c.Exporter {
	case "otlp", "stdout", "noop":
	default:
		return fmt.Errorf("tracing: unsupported exporter %q", c.Exporter)
	}
	return nil
}
