package ratelimit

import (
	"sync"
	"time"
)

const (
	sampleSize          = 10
	timeOffsetInterval  = 5 * time.Second
	serverDateAlignment = 500 * time.Millisecond
)

// LatencyRef 共享的网络延迟与时钟偏移估计，按毫秒滚动平均
type LatencyRef struct {
	mu sync.RWMutex

	latency int64 // 当前平均延迟（ms）
	raw     []int64

	timeOffset          int64 // 当前平均时钟偏移（ms）
	timeOffsets         []int64
	lastTimeOffsetCheck time.Time
}

// NewLatencyRef 创建延迟引用，offset 为初始延迟样本
func NewLatencyRef(offset time.Duration) *LatencyRef {
	ms := offset.Milliseconds()
	l := &LatencyRef{
		latency:     ms,
		raw:         make([]int64, sampleSize),
		timeOffsets: make([]int64, sampleSize),
	}
	for i := range l.raw {
		l.raw[i] = ms
	}
	return l
}

// Latency 当前平均延迟
func (l *LatencyRef) Latency() time.Duration {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return time.Duration(l.latency) * time.Millisecond
}

// TimeOffset 当前平均时钟偏移（正值表示本地时钟落后于服务端）
func (l *LatencyRef) TimeOffset() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return time.Duration(l.timeOffset) * time.Millisecond
}

// Observe 记录一次请求耗时
// 淘汰最旧样本：latency = latency - old/10 + new/10
func (l *LatencyRef) Observe(sample time.Duration) {
	ms := sample.Milliseconds()
	l.mu.Lock()
	defer l.mu.Unlock()

	old := l.raw[0]
	l.raw = append(l.raw[1:], ms)
	l.latency = l.latency - old/10 + ms/10
}

// ObserveServerTime 根据响应 Date 头更新时钟偏移，5 秒内最多检查一次
// 返回更新前的偏移，以及偏移是否超过 threshold
func (l *LatencyRef) ObserveServerTime(serverTime, now time.Time, threshold time.Duration) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastTimeOffsetCheck.Before(now.Add(-timeOffsetInterval)) {
		return time.Duration(l.timeOffset) * time.Millisecond, false
	}
	l.lastTimeOffsetCheck = now

	offset := serverTime.Add(serverDateAlignment).Sub(now).Milliseconds()
	limit := threshold.Milliseconds()
	prev := l.timeOffset
	drifted := prev-l.latency >= limit && offset-l.latency >= limit

	old := l.timeOffsets[0]
	l.timeOffsets = append(l.timeOffsets[1:], offset)
	l.timeOffset = l.timeOffset - old/10 + offset/10

	return time.Duration(prev) * time.Millisecond, drifted
}
