package ws

import "github.com/tokmz/guilded/pkg/errors"

// 5000 段错误码：网关连接相关
var (
	ErrAlreadyConnected  = errors.New(5001, "Calling connect while an existing connection is already established.")
	ErrInvalidToken      = errors.New(5002, "Invalid Token.")
	ErrConnectionTimeout = errors.New(5003, "Connection timeout.")
	ErrMalformedWelcome  = errors.New(5004, "WSERR: Couldn't get the heartbeat interval.")
	ErrMissingPacketData = errors.New(5005, "WSERR: Couldn't get packet data.")
	ErrHeartbeatAck      = errors.New(5006, "Server didn't acknowledge the previous heartbeat, possible lost connection.")
	ErrZlib              = errors.New(5007, "ZLib ERROR")
	ErrDecode            = errors.New(5008, "decode packet failed")
	ErrClosed            = errors.New(5009, "socket closed")
	ErrInvalidEncoding   = errors.New(5010, "invalid gateway encoding")
)
