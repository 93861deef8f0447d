package ratelimit

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type bucketItem struct {
	fn       func()
	priority bool
}

// Bucket 本地令牌桶，按 interval 补充 tokenLimit 个令牌并平滑发送间隔
type Bucket struct {
	mu sync.Mutex

	queue          []bucketItem
	interval       time.Duration
	tokenLimit     int
	tokens         int
	reservedTokens int
	lastReset      time.Time
	lastSend       time.Time
	timer          *clock.Timer

	latency *LatencyRef
	clock   clock.Clock
}

// NewBucket 创建令牌桶
func NewBucket(tokenLimit int, interval time.Duration, opts ...Option) *Bucket {
	o := buildOptions(opts)
	return &Bucket{
		interval:       interval,
		tokenLimit:     tokenLimit,
		reservedTokens: o.reservedTokens,
		latency:        o.latency,
		clock:          o.clock,
	}
}

// Queue 加入队列，priority 为 true 时插入队首；不会阻塞调用方
func (b *Bucket) Queue(fn func(), priority bool) {
	b.mu.Lock()
	item := bucketItem{fn: fn, priority: priority}
	if priority {
		b.queue = append([]bucketItem{item}, b.queue...)
		// 优先任务可以使用预留令牌，不等待下一次补充
		if b.timer != nil {
			b.timer.Stop()
			b.timer = nil
		}
	} else {
		b.queue = append(b.queue, item)
	}
	b.mu.Unlock()

	b.check()
}

// Len 队列中等待的任务数
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bucket) check() {
	b.mu.Lock()
	if b.timer != nil || len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}

	latency := b.latency.Latency()
	now := b.clock.Now()
	slack := time.Duration(b.tokenLimit) * latency
	if b.lastReset.Add(b.interval + slack).Before(now) {
		b.lastReset = now
		b.tokens = max(0, b.tokens-b.tokenLimit)
	}

	var ready []func()
	for len(b.queue) > 0 && b.available(b.queue[0].priority) {
		b.tokens++
		item := b.queue[0]
		b.queue = b.queue[1:]

		delay := latency - now.Sub(b.lastSend)
		if latency == 0 || delay <= 0 {
			ready = append(ready, item.fn)
			b.lastSend = now
			continue
		}
		b.clock.AfterFunc(delay, item.fn)
		b.lastSend = now.Add(delay)
	}

	// 仍有令牌但已预留时按延迟轮询，否则等待下一次补充
	if len(b.queue) > 0 {
		wait := max(latency, time.Millisecond)
		if b.tokens >= b.tokenLimit {
			wait = max(0, b.lastReset.Add(b.interval+slack).Sub(now)) + time.Millisecond
		}
		var t *clock.Timer
		t = b.clock.AfterFunc(wait, func() {
			b.mu.Lock()
			if b.timer == t {
				b.timer = nil
			}
			b.mu.Unlock()
			b.check()
		})
		b.timer = t
	}
	b.mu.Unlock()

	for _, fn := range ready {
		fn()
	}
}

// available 未预留令牌可用，或队首为优先任务且仍有令牌
func (b *Bucket) available(priority bool) bool {
	if b.tokens < b.tokenLimit-b.reservedTokens {
		return true
	}
	return priority && b.tokens < b.tokenLimit
}
