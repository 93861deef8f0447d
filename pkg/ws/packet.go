package ws

import (
	"bytes"
	"time"
)

// Opcode 网关操作码
type Opcode int

const (
	OpEvent   Opcode = 0
	OpWelcome Opcode = 1
	OpResume  Opcode = 2
	OpFailure Opcode = 8
	OpSuccess Opcode = 9
)

func (o Opcode) String() string {
	switch o {
	case OpEvent:
		return "event"
	case OpWelcome:
		return "welcome"
	case OpResume:
		return "resume"
	case OpFailure:
		return "failure"
	case OpSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Payload 延迟解码的数据字段，按连接使用的编码解析
type Payload struct {
	raw   []byte
	codec Codec
}

// NewPayload 用指定编码包装原始数据
func NewPayload(raw []byte, codec Codec) Payload {
	return Payload{raw: raw, codec: codec}
}

// Decode 解码到 v
func (p Payload) Decode(v any) error {
	if p.IsZero() {
		return ErrMissingPacketData
	}
	if err := p.codec.Unmarshal(p.raw, v); err != nil {
		return ErrDecode.WithError(err)
	}
	return nil
}

// Raw 原始字节
func (p Payload) Raw() []byte { return p.raw }

// IsZero 是否缺失或为 null
func (p Payload) IsZero() bool {
	return len(p.raw) == 0 || p.codec == nil || p.codec.IsNull(p.raw)
}

// Packet 网关数据包 {op, t, d, s}
type Packet struct {
	Op Opcode
	T  string
	D  Payload
	S  string
}

// Welcome 欢迎包数据
type Welcome struct {
	HeartbeatIntervalMs int64  `json:"heartbeatIntervalMs"`
	LastMessageID       string `json:"lastMessageId"`
	BotID               string `json:"botId"`

	Packet *Packet `json:"-"`
}

// HeartbeatInterval 心跳间隔
func (w *Welcome) HeartbeatInterval() time.Duration {
	return time.Duration(w.HeartbeatIntervalMs) * time.Millisecond
}

var (
	// trailer 压缩消息结束标记
	trailer = []byte{0x30, 0x30, 0x7d, 0x7d}
	// syncFlush zlib Z_SYNC_FLUSH 结尾
	syncFlush = []byte{0x00, 0x00, 0xff, 0xff}
)

// splitFrame 判断压缩帧是否完整，返回需要写入 inflate 流的数据
func splitFrame(data []byte) (chunk []byte, complete bool) {
	if len(data) < 4 {
		return data, false
	}
	tail := data[len(data)-4:]
	switch {
	case bytes.Equal(tail, trailer):
		return data[:len(data)-4], true
	case bytes.Equal(tail, syncFlush):
		return data, true
	default:
		return data, false
	}
}
