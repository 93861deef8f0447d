package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, E any] struct {
	key   K
	value E
}

// TypedCollection 按插入顺序淘汰的实体集合
// 同一个 key 只会存在一个实体实例，更新时原地合并
type TypedCollection[K comparable, R Raw[K], E Entity[K, R]] struct {
	mu    sync.RWMutex
	items map[K]*list.Element
	order *list.List
	limit int
	build Constructor[R, E]
	extra []any
}

// NewTypedCollection 创建集合
// limit 为 Unlimited 时不限制大小，为 0 时不缓存
// extra 会传递给每次构建的实体（例如所属服务器 id）
func NewTypedCollection[K comparable, R Raw[K], E Entity[K, R]](build Constructor[R, E], limit int, extra ...any) *TypedCollection[K, R, E] {
	if build == nil {
		panic("cache: nil entity constructor")
	}
	return &TypedCollection[K, R, E]{
		items: make(map[K]*list.Element),
		order: list.New(),
		limit: limit,
		build: build,
		extra: extra,
	}
}

// Limit 集合上限
func (c *TypedCollection[K, R, E]) Limit() int {
	return c.limit
}

// Add 插入或替换实体，超过上限时淘汰最早插入的实体
func (c *TypedCollection[K, R, E]) Add(e E) (E, error) {
	var zero K
	if e.Key() == zero {
		return e, ErrMissingKey
	}
	if c.limit == 0 {
		return e, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(e)
	return e, nil
}

func (c *TypedCollection[K, R, E]) put(e E) {
	key := e.Key()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, E]).value = e
		return
	}
	c.items[key] = c.order.PushBack(&entry[K, E]{key: key, value: e})

	if c.limit < 0 {
		return
	}
	for c.order.Len() > c.limit {
		front := c.order.Front()
		delete(c.items, front.Value.(*entry[K, E]).key)
		c.order.Remove(front)
	}
}

// Update 按原始数据合并或构建实体
// 已缓存时原地合并并返回原实例；否则构建新实体并插入
func (c *TypedCollection[K, R, E]) Update(raw R, extra ...any) E {
	return c.update(raw, extra, false)
}

// UpdateSnapshot 同 Update，但返回合并后在锁内生成的快照
// 缓存实例会被后续合并原地修改，交给其他 goroutine 的数据应使用快照
func (c *TypedCollection[K, R, E]) UpdateSnapshot(raw R, extra ...any) E {
	return c.update(raw, extra, true)
}

func (c *TypedCollection[K, R, E]) update(raw R, extra []any, snapshot bool) E {
	key, ok := raw.RawKey()
	if ok {
		c.mu.Lock()
		if el, found := c.items[key]; found {
			e := el.Value.(*entry[K, E]).value
			e.Merge(raw)
			if snapshot {
				e = clone(e)
			}
			c.mu.Unlock()
			return e
		}
		c.mu.Unlock()
	}

	args := make([]any, 0, len(c.extra)+len(extra))
	args = append(args, c.extra...)
	args = append(args, extra...)
	e := c.build(raw, args...)

	var zero K
	if e.Key() == zero || c.limit == 0 {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// 构建期间可能已被其他调用插入
	if el, found := c.items[e.Key()]; found {
		e = el.Value.(*entry[K, E]).value
		e.Merge(raw)
	} else {
		c.put(e)
	}
	if snapshot {
		return clone(e)
	}
	return e
}

// UpdateEntity 将原始数据合并到给定实例并返回它
// 合并改变了键时，集合中的条目随之改键，新键上的旧实体被替换
func (c *TypedCollection[K, R, E]) UpdateEntity(e E, raw R) E {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := e.Key()
	e.Merge(raw)
	key := e.Key()
	if key == old {
		return e
	}

	el, ok := c.items[old]
	if !ok || any(el.Value.(*entry[K, E]).value) != any(e) {
		return e
	}
	delete(c.items, old)

	var zero K
	if key == zero {
		c.order.Remove(el)
		return e
	}
	if dup, found := c.items[key]; found {
		c.order.Remove(dup)
	}
	el.Value.(*entry[K, E]).key = key
	c.items[key] = el
	return e
}

// Get 获取实体，不存在时返回零值和 false
func (c *TypedCollection[K, R, E]) Get(key K) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[K, E]).value, true
	}
	var zero E
	return zero, false
}

// Snapshot 获取实体的快照，实体未实现 Cloner 时返回原实例
func (c *TypedCollection[K, R, E]) Snapshot(key K) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if el, ok := c.items[key]; ok {
		return clone(el.Value.(*entry[K, E]).value), true
	}
	var zero E
	return zero, false
}

// Has 是否存在
func (c *TypedCollection[K, R, E]) Has(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[key]
	return ok
}

// Delete 删除实体，返回是否存在
func (c *TypedCollection[K, R, E]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return false
	}
	delete(c.items, key)
	c.order.Remove(el)
	return true
}

// Len 实体数量
func (c *TypedCollection[K, R, E]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Keys 按插入顺序返回所有键
func (c *TypedCollection[K, R, E]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, E]).key)
	}
	return keys
}

// Values 按插入顺序返回所有实体
func (c *TypedCollection[K, R, E]) Values() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	values := make([]E, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		values = append(values, el.Value.(*entry[K, E]).value)
	}
	return values
}

// Range 按插入顺序遍历，fn 返回 false 时停止
// 遍历的是快照，fn 中可以修改集合
func (c *TypedCollection[K, R, E]) Range(fn func(key K, e E) bool) {
	for _, e := range c.Values() {
		if !fn(e.Key(), e) {
			return
		}
	}
}

// Find 返回第一个满足条件的实体
func (c *TypedCollection[K, R, E]) Find(fn func(e E) bool) (E, bool) {
	for _, e := range c.Values() {
		if fn(e) {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Clear 清空集合
func (c *TypedCollection[K, R, E]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.order.Init()
}
