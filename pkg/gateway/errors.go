package gateway

import "github.com/tokmz/guilded/pkg/errors"

// 6000 段错误码：事件分发相关
var (
	// errHydrationSkipped 最近拉取失败，暂不重试
	errHydrationSkipped = errors.New(6001, "gateway: hydration skipped after recent failure")
)
