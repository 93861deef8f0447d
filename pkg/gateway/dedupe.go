package gateway

import (
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/tokmz/guilded/pkg/cache"
)

const (
	dedupeFalsePositive = 0.001
	dedupeTTL           = 10 * time.Minute
)

// dedupe 恢复会话后服务端会重放未送达的事件，按消息 id 去重
// 布隆过滤器快速判断未见过的 id，命中时再查精确记录，避免误判丢事件
type dedupe struct {
	mu       sync.Mutex
	filter   *bloom.BloomFilter
	capacity uint
	added    uint
	recent   *cache.Store
}

func newDedupe(capacity uint, store *cache.Store) *dedupe {
	return &dedupe{
		filter:   bloom.NewWithEstimates(capacity, dedupeFalsePositive),
		capacity: capacity,
		recent:   store,
	}
}

// seen 记录 id 并返回之前是否出现过，空 id 永远视为新事件
func (d *dedupe) seen(id string) bool {
	if id == "" {
		return false
	}
	key := "seen:" + id

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter.TestString(id) && d.recent.Has(key) {
		return true
	}
	if d.added >= d.capacity {
		d.filter.ClearAll()
		d.added = 0
	}
	d.filter.AddString(id)
	d.added++
	d.recent.Set(key, struct{}{}, dedupeTTL)
	return false
}
