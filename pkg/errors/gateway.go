package errors

import "fmt"

// GatewayError 网关连接关闭错误
type GatewayError struct {
	Code   int    // websocket 关闭码
	Reason string // 关闭原因
}

// NewGatewayError 创建网关错误
func NewGatewayError(reason string, code int) *GatewayError {
	return &GatewayError{Code: code, Reason: reason}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway closed (%d): %s", e.Code, e.Reason)
}

// Routine 是否为常规断线（1001 going away / 1006 abnormal closure）
func (e *GatewayError) Routine() bool {
	return e.Code == 1001 || e.Code == 1006
}
