package errors

/*
	通用错误码，各子包在自己的号段内定义其余错误
	1000 通用 / 2000 cache / 3000 config / 4000 request / 5000 ws / 6000 gateway / 7000 client
*/

var (
	// ErrInternal 内部错误
	ErrInternal = New(1000, "internal error")
	// ErrInvalidArgument 参数错误
	ErrInvalidArgument = New(1001, "invalid argument")
	// ErrNotFound 资源不存在
	ErrNotFound = New(1004, "not found", 404)
	// ErrClosed 已关闭
	ErrClosed = New(1005, "closed")
)
