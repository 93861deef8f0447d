package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyRef_Observe(t *testing.T) {
	l := NewLatencyRef(0)
	assert.Equal(t, time.Duration(0), l.Latency())

	l.Observe(100 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, l.Latency())

	for range sampleSize {
		l.Observe(100 * time.Millisecond)
	}
	assert.Equal(t, 100*time.Millisecond, l.Latency())

	// 截断为 10 分之一
	l.Observe(109 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, l.Latency())
}

func TestLatencyRef_InitialOffset(t *testing.T) {
	l := NewLatencyRef(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, l.Latency())
	l.Observe(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, l.Latency())
}

func TestLatencyRef_ObserveServerTime(t *testing.T) {
	l := NewLatencyRef(0)
	now := time.Unix(1_700_000_000, 0)

	_, drifted := l.ObserveServerTime(now.Add(time.Minute), now, 30*time.Second)
	assert.False(t, drifted, "first sample only seeds the rolling offset")
	assert.Equal(t, 6050*time.Millisecond, l.TimeOffset())

	// 5 秒内不再检查
	_, drifted = l.ObserveServerTime(now.Add(time.Hour), now.Add(time.Second), 30*time.Second)
	assert.False(t, drifted)
	assert.Equal(t, 6050*time.Millisecond, l.TimeOffset())

	for i := 1; i <= 10; i++ {
		at := now.Add(time.Duration(i) * 6 * time.Second)
		_, drifted = l.ObserveServerTime(at.Add(time.Minute), at, 30*time.Second)
	}
	assert.True(t, drifted)
}

func TestSequentialBucket_Serializes(t *testing.T) {
	b := NewSequentialBucket(5, NewLatencyRef(0))

	var (
		mu      sync.Mutex
		order   []string
		release = make(chan func(), 2)
	)
	b.Queue(func(done func()) {
		mu.Lock()
		order = append(order, "first:start")
		mu.Unlock()
		release <- done
	}, false)
	b.Queue(func(done func()) {
		mu.Lock()
		order = append(order, "second:start")
		mu.Unlock()
		done()
	}, false)

	mu.Lock()
	assert.Equal(t, []string{"first:start"}, order, "second task must wait for first to finish")
	mu.Unlock()
	assert.Equal(t, 1, b.Len())

	done := <-release
	mu.Lock()
	order = append(order, "first:done")
	mu.Unlock()
	done()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first:start", "first:done", "second:start"}, order)
}

func TestSequentialBucket_DoneIsIdempotent(t *testing.T) {
	b := NewSequentialBucket(5, NewLatencyRef(0))
	var calls atomic.Int32

	b.Queue(func(done func()) {
		done()
		done()
	}, false)
	b.Queue(func(done func()) { calls.Add(1); done() }, false)
	b.Queue(func(done func()) { calls.Add(1); done() }, false)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, b.Len())
}

func TestSequentialBucket_Priority(t *testing.T) {
	b := NewSequentialBucket(5, NewLatencyRef(0))
	var (
		order []int
		hold  func()
	)
	b.Queue(func(done func()) { hold = done }, false)
	b.Queue(func(done func()) { order = append(order, 1); done() }, false)
	b.Queue(func(done func()) { order = append(order, 2); done() }, true)

	hold()
	assert.Equal(t, []int{2, 1}, order)
}

func TestSequentialBucket_WaitsForReset(t *testing.T) {
	mock := clock.NewMock()
	b := NewSequentialBucket(1, NewLatencyRef(0), WithClock(mock))
	var ran atomic.Int32

	b.Queue(func(done func()) {
		ran.Add(1)
		b.SetRemaining(0)
		b.SetReset(mock.Now().Add(time.Second))
		done()
	}, false)
	b.Queue(func(done func()) { ran.Add(1); done() }, false)

	require.Equal(t, int32(1), ran.Load())
	_, remaining, _ := b.State()
	assert.Equal(t, 0, remaining)

	mock.Add(500 * time.Millisecond)
	assert.Equal(t, int32(1), ran.Load(), "must not run before reset")

	mock.Add(501 * time.Millisecond)
	assert.Eventually(t, func() bool { return ran.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestBucket_RespectsTokenLimit(t *testing.T) {
	mock := clock.NewMock()
	b := NewBucket(2, time.Second, WithClock(mock))
	var ran atomic.Int32

	for range 5 {
		b.Queue(func() { ran.Add(1) }, false)
	}
	assert.Equal(t, int32(2), ran.Load())
	assert.Equal(t, 3, b.Len())

	mock.Add(1001 * time.Millisecond)
	assert.Eventually(t, func() bool { return ran.Load() == 4 }, time.Second, 5*time.Millisecond)

	mock.Add(1001 * time.Millisecond)
	assert.Eventually(t, func() bool { return ran.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestBucket_ReservedTokens(t *testing.T) {
	mock := clock.NewMock()
	b := NewBucket(2, time.Second, WithClock(mock), WithReservedTokens(1))
	var normal, urgent atomic.Int32

	b.Queue(func() { normal.Add(1) }, false)
	b.Queue(func() { normal.Add(1) }, false)
	assert.Equal(t, int32(1), normal.Load(), "reserved token is held back for priority work")

	b.Queue(func() { urgent.Add(1) }, true)
	assert.Equal(t, int32(1), urgent.Load())
	assert.Equal(t, 1, b.Len())
}

func TestBucket_ReservedRecheckFollowsLatency(t *testing.T) {
	mock := clock.NewMock()
	latency := NewLatencyRef(time.Second)
	b := NewBucket(2, time.Second, WithClock(mock), WithLatencyRef(latency), WithReservedTokens(1))
	var ran atomic.Int32

	b.Queue(func() { ran.Add(1) }, false)
	b.Queue(func() { ran.Add(1) }, false)
	assert.Equal(t, int32(1), ran.Load())

	// 延迟下降后补充提前，按延迟轮询能及时发现
	for range sampleSize {
		latency.Observe(0)
	}
	require.Equal(t, time.Duration(0), latency.Latency())

	mock.Add(time.Second)
	assert.Eventually(t, func() bool {
		mock.Add(time.Millisecond)
		return ran.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestBucket_SmoothsWithLatency(t *testing.T) {
	mock := clock.NewMock()
	latency := NewLatencyRef(100 * time.Millisecond)
	b := NewBucket(10, time.Second, WithClock(mock), WithLatencyRef(latency))
	var ran atomic.Int32

	b.Queue(func() { ran.Add(1) }, false)
	b.Queue(func() { ran.Add(1) }, false)
	assert.Equal(t, int32(1), ran.Load(), "second call is spaced by the observed latency")

	mock.Add(100 * time.Millisecond)
	assert.Eventually(t, func() bool { return ran.Load() == 2 }, time.Second, 5*time.Millisecond)
}
