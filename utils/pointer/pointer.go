package pointer

// Of 返回值的指针
func Of[T any](v T) *T {
	return &v
}

// Get 获取指针的值，如果指针为 nil 返回零值
func Get[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// GetOrDefault 获取指针的值，如果指针为 nil 返回默认值
func GetOrDefault[T any](p *T, defaultValue T) T {
	if p == nil {
		return defaultValue
	}
	return *p
}

// Coalesce 返回第一个非 nil 指针
func Coalesce[T any](pointers ...*T) *T {
	for _, p := range pointers {
		if p != nil {
			return p
		}
	}
	return nil
}

// Assign src 非 nil 时写入 dst，返回是否写入
func Assign[T any](dst *T, src *T) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}

// AssignPtr src 非 nil 时替换 dst 指向的值
// 用于需要区分"未设置"与"零值"的可选字段
func AssignPtr[T any](dst **T, src *T) bool {
	if src == nil {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// AssignSlice src 非 nil 时复制到 dst
func AssignSlice[T any](dst *[]T, src []T) bool {
	if src == nil {
		return false
	}
	*dst = append([]T(nil), src...)
	return true
}

// NilIfZero 零值返回 nil
func NilIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
