package ws

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec 数据包编码
type Codec interface {
	Name() string
	Unmarshal(data []byte, v any) error
	IsNull(data []byte) bool
	// DecodePacket 解析单个完整帧
	DecodePacket(data []byte) (*Packet, error)
	// NewStreamDecoder 从连续的数据流中逐个解析数据包（压缩模式）
	NewStreamDecoder(r io.Reader) StreamDecoder
}

// StreamDecoder 流式数据包解码器
type StreamDecoder interface {
	Decode() (*Packet, error)
}

var (
	// JSON 默认编码
	JSON Codec = jsonCodec{}
	// CBOR 二进制编码
	CBOR Codec = newCBORCodec()
)

// CodecFor 按名称选择编码
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return nil, ErrInvalidEncoding.WithMessage("invalid gateway encoding: " + name)
	}
}

type jsonWire struct {
	Op int             `json:"op"`
	T  string          `json:"t"`
	D  json.RawMessage `json:"d"`
	S  string          `json:"s"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) IsNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func (c jsonCodec) DecodePacket(data []byte) (*Packet, error) {
	var w jsonWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return c.packet(&w), nil
}

func (c jsonCodec) packet(w *jsonWire) *Packet {
	return &Packet{Op: Opcode(w.Op), T: w.T, D: Payload{raw: w.D, codec: c}, S: w.S}
}

func (c jsonCodec) NewStreamDecoder(r io.Reader) StreamDecoder {
	return &jsonStream{codec: c, dec: json.NewDecoder(r)}
}

type jsonStream struct {
	codec jsonCodec
	dec   *json.Decoder
}

func (s *jsonStream) Decode() (*Packet, error) {
	var w jsonWire
	if err := s.dec.Decode(&w); err != nil {
		return nil, err
	}
	return s.codec.packet(&w), nil
}

type cborWire struct {
	Op int             `cbor:"op"`
	T  string          `cbor:"t"`
	D  cbor.RawMessage `cbor:"d"`
	S  string          `cbor:"s"`
}

type cborCodec struct {
	dm cbor.DecMode
}

func newCBORCodec() cborCodec {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("ws: cbor decoder initialization failed: " + err.Error())
	}
	return cborCodec{dm: dm}
}

func (cborCodec) Name() string { return "cbor" }

func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dm.Unmarshal(data, v) }

func (cborCodec) IsNull(data []byte) bool {
	// 0xf6 null, 0xf7 undefined
	return len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7)
}

func (c cborCodec) DecodePacket(data []byte) (*Packet, error) {
	var w cborWire
	if err := c.dm.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return c.packet(&w), nil
}

func (c cborCodec) packet(w *cborWire) *Packet {
	return &Packet{Op: Opcode(w.Op), T: w.T, D: Payload{raw: w.D, codec: c}, S: w.S}
}

func (c cborCodec) NewStreamDecoder(r io.Reader) StreamDecoder {
	return &cborStream{codec: c, dec: c.dm.NewDecoder(r)}
}

type cborStream struct {
	codec cborCodec
	dec   *cbor.Decoder
}

func (s *cborStream) Decode() (*Packet, error) {
	var w cborWire
	if err := s.dec.Decode(&w); err != nil {
		return nil, err
	}
	return s.codec.packet(&w), nil
}
