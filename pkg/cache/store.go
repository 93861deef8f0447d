package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Store 带过期时间的内存存储
// 并发的同 key 加载只执行一次
type Store struct {
	cache *gocache.Cache
	group singleflight.Group
}

// NewStore 创建存储，defaultTTL 为默认过期时间，cleanup 为过期清理间隔
func NewStore(defaultTTL, cleanup time.Duration) *Store {
	return &Store{cache: gocache.New(defaultTTL, cleanup)}
}

// Get 获取值
func (s *Store) Get(key string) (any, bool) {
	return s.cache.Get(key)
}

// Set 设置值，ttl 为 0 时使用默认过期时间
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
}

// Has 是否存在且未过期
func (s *Store) Has(key string) bool {
	_, ok := s.cache.Get(key)
	return ok
}

// Delete 删除
func (s *Store) Delete(keys ...string) {
	for _, key := range keys {
		s.cache.Delete(key)
	}
}

// TTL 剩余过期时间，永不过期返回 -1
func (s *Store) TTL(key string) (time.Duration, error) {
	_, expiration, ok := s.cache.GetWithExpiration(key)
	if !ok {
		return 0, ErrNotFound
	}
	if expiration.IsZero() {
		return -1, nil
	}
	return time.Until(expiration), nil
}

// Len 条目数量（含尚未清理的过期条目）
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Do 合并同 key 的并发调用，shared 表示结果是否被多个调用方共享
func (s *Store) Do(key string, fn func() (any, error)) (v any, err error, shared bool) {
	return s.group.Do(key, fn)
}

// Forget 丢弃进行中的调用，下次 Do 会重新执行
func (s *Store) Forget(key string) {
	s.group.Forget(key)
}

// Flush 清空
func (s *Store) Flush() {
	s.cache.Flush()
}

// Remember 命中时直接返回，否则合并加载并缓存结果
func Remember[T any](s *Store, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err, _ := s.Do(key, func() (any, error) {
		r, err := fn()
		if err != nil {
			return nil, err
		}
		s.Set(key, r, ttl)
		return r, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidType
	}
	return t, nil
}
