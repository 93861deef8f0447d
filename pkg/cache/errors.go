package cache

import "github.com/tokmz/guilded/pkg/errors"

// 2000 段错误码：缓存相关
var (
	// ErrMissingKey 实体缺少 id
	ErrMissingKey = errors.New(2001, "cache: entity has no key")
	// ErrNotFound 键不存在
	ErrNotFound = errors.New(2002, "cache: key not found")
	// ErrInvalidType 缓存值类型不匹配
	ErrInvalidType = errors.New(2003, "cache: invalid value type")
)
