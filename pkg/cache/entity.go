package cache

// Entity 可缓存实体：有稳定的键，并支持按部分数据原地合并
type Entity[K comparable, R any] interface {
	Key() K
	Merge(raw R)
}

// Cloner 可生成浅拷贝的实体
// 快照与缓存实例互不影响，合并只修改缓存实例
type Cloner[E any] interface {
	Clone() E
}

func clone[E any](e E) E {
	if c, ok := any(e).(Cloner[E]); ok {
		return c.Clone()
	}
	return e
}

// Raw 实体的原始（可能不完整的）数据
type Raw[K comparable] interface {
	// RawKey 返回数据中的 id，缺失时 ok 为 false
	RawKey() (key K, ok bool)
}

// Constructor 由原始数据构建实体，extra 为集合构造参数加上调用参数
type Constructor[R any, E any] func(raw R, extra ...any) E

// Unlimited 不限制集合大小
const Unlimited = -1
