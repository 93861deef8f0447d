package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/logger"
)

// ErrBusClosed 事件总线已关闭
var ErrBusClosed = errors.New(1006, "event bus closed")

// Event 事件
type Event struct {
	Name string
	Data any
	Time time.Time
}

// Handler 事件处理器
type Handler func(Event)

type subscription struct {
	id   uint64
	name string // 空字符串表示订阅全部
	fn    Handler
	once  bool
	fired atomic.Bool
}

// Bus 有序事件总线
// 所有事件由单个 worker 按发布顺序投递，处理器之间不会并发执行
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	nextID atomic.Uint64

	queue   chan Event
	stopCh  chan struct{}
	done    chan struct{}
	closed  atomic.Bool
	sync    bool
	dropped atomic.Int64
	log     logger.Logger
}

// Option 总线选项
type Option func(*Bus)

// WithQueueSize 设置缓冲队列大小
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan Event, n)
		}
	}
}

// WithSync 在发布者协程中同步投递
func WithSync() Option {
	return func(b *Bus) { b.sync = true }
}

// WithLogger 设置日志器（记录处理器 panic）
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// NewBus 创建事件总线
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		queue:  make(chan Event, 1024),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.sync {
		close(b.done)
	} else {
		go b.worker()
	}
	return b
}

func (b *Bus) worker() {
	defer close(b.done)
	for {
		select {
		case e := <-b.queue:
			b.dispatch(e)
		case <-b.stopCh:
			// 投递关闭前已入队的事件
			for {
				select {
				case e := <-b.queue:
					b.dispatch(e)
				default:
					return
				}
			}
		}
	}
}

// On 订阅事件，返回取消订阅函数
func (b *Bus) On(name string, fn Handler) func() {
	return b.subscribe(name, fn, false)
}

// Once 订阅一次
func (b *Bus) Once(name string, fn Handler) func() {
	return b.subscribe(name, fn, true)
}

// OnAny 订阅全部事件
func (b *Bus) OnAny(fn Handler) func() {
	return b.subscribe("", fn, false)
}

func (b *Bus) subscribe(name string, fn Handler, once bool) func() {
	sub := &subscription{id: b.nextID.Add(1), name: name, fn: fn, once: once}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return func() { b.remove(sub.id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// HasListeners 是否存在该事件的订阅者
func (b *Bus) HasListeners(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.name == name || s.name == "" {
			return true
		}
	}
	return false
}

// Emit 发布事件
func (b *Bus) Emit(name string, data any) {
	b.Publish(Event{Name: name, Data: data, Time: time.Now()})
}

// Publish 发布事件，队列满时阻塞以保证顺序
func (b *Bus) Publish(e Event) {
	if b.closed.Load() {
		b.dropped.Add(1)
		return
	}
	if b.sync {
		b.dispatch(e)
		return
	}
	select {
	case b.queue <- e:
	case <-b.stopCh:
		b.dropped.Add(1)
	}
}

func (b *Bus) dispatch(e Event) {
	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == e.Name || s.name == "" {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		if s.once {
			// 同步模式下可能被并发投递
			if !s.fired.CompareAndSwap(false, true) {
				continue
			}
			b.remove(s.id)
		}
		b.call(s, e)
	}
}

func (b *Bus) call(s *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panic",
				zap.String("event", e.Name),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	s.fn(e)
}

// Wait 阻塞直到收到指定事件
func (b *Bus) Wait(ctx context.Context, name string) (Event, error) {
	ch := make(chan Event, 1)
	cancel := b.Once(name, func(e Event) { ch <- e })
	defer cancel()
	select {
	case e := <-ch:
		return e, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case <-b.stopCh:
		return Event{}, ErrBusClosed
	}
}

// Close 关闭总线，等待已入队事件投递完成
// 异步模式下不能在处理器中直接调用，否则等待自身所在的 worker 造成死锁，需另起协程
func (b *Bus) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	close(b.stopCh)
	<-b.done
}

// Dropped 关闭后被丢弃的事件数量
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
