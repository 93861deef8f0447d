package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPreservesOrder(t *testing.T) {
	bus := NewBus(WithQueueSize(4))

	var mu sync.Mutex
	var got []int
	bus.On("tick", func(e Event) {
		mu.Lock()
		got = append(got, e.Data.(int))
		mu.Unlock()
	})

	for i := range 100 {
		bus.Emit("tick", i)
	}
	bus.Close()

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestBusOnceAndUnsubscribe(t *testing.T) {
	bus := NewBus(WithSync())
	defer bus.Close()

	var once, regular int
	bus.Once("ready", func(Event) { once++ })
	off := bus.On("ready", func(Event) { regular++ })

	bus.Emit("ready", nil)
	bus.Emit("ready", nil)
	off()
	bus.Emit("ready", nil)

	assert.Equal(t, 1, once)
	assert.Equal(t, 2, regular)
	assert.False(t, bus.HasListeners("ready"))
}

func TestBusOnceConcurrentSyncEmit(t *testing.T) {
	bus := NewBus(WithSync())
	defer bus.Close()

	var calls atomic.Int32
	start := make(chan struct{})
	bus.Once("ready", func(Event) {
		<-start
		calls.Add(1)
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit("ready", nil)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestBusOnAny(t *testing.T) {
	bus := NewBus(WithSync())
	defer bus.Close()

	var names []string
	bus.OnAny(func(e Event) { names = append(names, e.Name) })
	bus.Emit("a", nil)
	bus.Emit("b", nil)

	assert.Equal(t, []string{"a", "b"}, names)
	assert.True(t, bus.HasListeners("anything"))
}

func TestBusRecoversHandlerPanic(t *testing.T) {
	bus := NewBus(WithSync())
	defer bus.Close()

	var after bool
	bus.On("boom", func(Event) { panic("handler failed") })
	bus.On("boom", func(Event) { after = true })

	assert.NotPanics(t, func() { bus.Emit("boom", nil) })
	assert.True(t, after)
}

func TestBusWait(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Emit("welcome", "bot")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := bus.Wait(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "bot", e.Data)
}

func TestBusWaitCancelled(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := bus.Wait(ctx, "never")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBusDropsAfterClose(t *testing.T) {
	bus := NewBus()
	bus.Close()
	bus.Close()

	bus.Emit("late", nil)
	assert.Equal(t, int64(1), bus.Dropped())

	_, err := bus.Wait(context.Background(), "late")
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestBusCloseFromHandlerGoroutine(t *testing.T) {
	bus := NewBus()

	var delivered atomic.Int32
	emitted := make(chan struct{})
	closed := make(chan struct{})
	bus.On("stop", func(Event) {
		go func() {
			<-emitted
			bus.Close()
			close(closed)
		}()
	})
	bus.On("after", func(Event) { delivered.Add(1) })

	bus.Emit("stop", nil)
	bus.Emit("after", nil)
	close(emitted)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	assert.Equal(t, int32(1), delivered.Load())
}
