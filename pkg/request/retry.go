package request

import (
	"math/rand/v2"
	"time"
)

// RetryConfig 502 重试配置
type RetryConfig struct {
	MaxAttempts int           // 最大尝试次数（含首次，默认 4）
	MinDelay    time.Duration // 最小等待（默认 100ms）
	MaxDelay    time.Duration // 最大等待（默认 2s）
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 4,
		MinDelay:    100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// backoff 在 [MinDelay, MaxDelay) 内随机取值，按毫秒取整
func (rc *RetryConfig) backoff() time.Duration {
	span := rc.MaxDelay - rc.MinDelay
	if span <= 0 {
		return rc.MinDelay
	}
	d := rc.MinDelay + time.Duration(rand.Int64N(int64(span)))
	return d.Truncate(time.Millisecond)
}

func (rc *RetryConfig) normalize() {
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = 4
	}
	if rc.MinDelay <= 0 {
		rc.MinDelay = 100 * time.Millisecond
	}
	if rc.MaxDelay < rc.MinDelay {
		rc.MaxDelay = rc.MinDelay
	}
}
