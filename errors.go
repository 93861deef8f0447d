package guilded

import "github.com/tokmz/guilded/pkg/errors"

// 7000 段错误码：客户端参数校验
var (
	// ErrNoToken 未提供 token
	ErrNoToken = errors.New(7001, "No token provided")
	// ErrMissingID 缺少必填 id
	ErrMissingID = errors.New(7002, "missing id", 400)
	// ErrMissingOptions 缺少必填参数
	ErrMissingOptions = errors.New(7003, "No options provided", 400)
	// ErrRESTDisabled REST 管线已关闭
	ErrRESTDisabled = errors.New(7004, "rest is disabled")
	// ErrUnexpectedResponse 响应缺少预期字段
	ErrUnexpectedResponse = errors.New(7005, "unexpected response")
	// ErrNotConnected 网关未就绪
	ErrNotConnected = errors.New(7006, "gateway is not connected", 503)
)

// missing 返回 "No <name> provided" 错误
func missing(name string) error {
	return ErrMissingID.WithMessage("No " + name + " provided")
}

// require 依次校验必填参数，返回第一个缺失的
func require(params ...param) error {
	for _, p := range params {
		if !p.ok {
			return missing(p.name)
		}
	}
	return nil
}

type param struct {
	name string
	ok   bool
}

func str(name, v string) param { return param{name: name, ok: v != ""} }

func num(name string, v int) param { return param{name: name, ok: v != 0} }
