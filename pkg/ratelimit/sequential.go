package ratelimit

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Task 顺序桶任务，完成后必须调用 done
type Task func(done func())

// SequentialBucket 按路由的顺序限流桶，遵循服务端返回的 remaining/reset
// 同一时刻最多只有一个任务在执行
type SequentialBucket struct {
	mu sync.Mutex

	queue      []Task
	limit      int
	remaining  int
	reset      time.Time
	last       time.Time
	processing bool
	timer      *clock.Timer

	latency *LatencyRef
	clock   clock.Clock
}

// NewSequentialBucket 创建顺序桶
func NewSequentialBucket(limit int, latency *LatencyRef, opts ...Option) *SequentialBucket {
	o := buildOptions(append([]Option{WithLatencyRef(latency)}, opts...))
	return &SequentialBucket{
		limit:     limit,
		remaining: limit,
		latency:   o.latency,
		clock:     o.clock,
	}
}

// Queue 加入队列，priority 为 true 时插入队首
func (b *SequentialBucket) Queue(task Task, priority bool) {
	b.mu.Lock()
	if priority {
		b.queue = append([]Task{task}, b.queue...)
	} else {
		b.queue = append(b.queue, task)
	}
	b.mu.Unlock()

	b.check(false)
}

// SetLimit 更新服务端声明的上限
func (b *SequentialBucket) SetLimit(n int) {
	b.mu.Lock()
	b.limit = n
	b.mu.Unlock()
}

// SetRemaining 更新剩余次数
func (b *SequentialBucket) SetRemaining(n int) {
	b.mu.Lock()
	b.remaining = n
	b.mu.Unlock()
}

// SetReset 更新重置时间
func (b *SequentialBucket) SetReset(t time.Time) {
	b.mu.Lock()
	b.reset = t
	b.mu.Unlock()
}

// State 当前状态快照
func (b *SequentialBucket) State() (limit, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit, b.remaining, b.reset
}

// Len 队列中等待的任务数
func (b *SequentialBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *SequentialBucket) check(force bool) {
	b.mu.Lock()
	if len(b.queue) == 0 {
		if b.processing {
			if b.timer != nil {
				b.timer.Stop()
				b.timer = nil
			}
			b.processing = false
		}
		b.mu.Unlock()
		return
	}
	if b.processing && !force {
		b.mu.Unlock()
		return
	}

	now := b.clock.Now()
	offset := b.latency.Latency()
	if b.reset.IsZero() || b.reset.Before(now.Add(-offset)) {
		b.reset = now.Add(-offset)
		b.remaining = b.limit
	}
	b.last = now

	if b.remaining <= 0 {
		wait := max(0, b.reset.Sub(now)+offset) + time.Millisecond
		b.processing = true
		b.timer = b.clock.AfterFunc(wait, func() {
			b.mu.Lock()
			b.timer = nil
			b.processing = false
			b.mu.Unlock()
			b.check(true)
		})
		b.mu.Unlock()
		return
	}

	b.remaining--
	b.processing = true
	task := b.queue[0]
	b.queue = b.queue[1:]
	b.mu.Unlock()

	var once sync.Once
	task(func() {
		once.Do(b.complete)
	})
}

// complete 当前任务结束，继续处理下一个
func (b *SequentialBucket) complete() {
	b.mu.Lock()
	more := len(b.queue) > 0
	if !more {
		b.processing = false
	}
	b.mu.Unlock()

	if more {
		b.check(true)
	}
}
