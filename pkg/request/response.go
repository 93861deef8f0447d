package request

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"
)

// Response REST 响应
type Response struct {
	StatusCode int           // HTTP 状态码
	Headers    http.Header   // 响应头
	Body       []byte        // 原始响应体
	Data       any           // Content-Type 为 application/json 时的解析结果，否则为 Body
	Duration   time.Duration // 请求耗时
	Request    *http.Request // 最后一次发出的请求
}

// IsSuccess 判断是否为成功响应
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON 响应是否为 JSON
func (r *Response) IsJSON() bool {
	mt, _, err := mime.ParseMediaType(r.Headers.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// Unmarshal JSON 反序列化到任意类型
func (r *Response) Unmarshal(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return ErrUnmarshal.WithError(err)
	}
	return nil
}

// String 返回 Body 字符串
func (r *Response) String() string {
	return string(r.Body)
}

// Do 执行请求并将响应解析为 *T，204 返回 nil
func Do[T any](req *Request) (*T, error) {
	resp, err := req.Do()
	if err != nil {
		return nil, err
	}
	return Decode[T](resp)
}

// Decode 将响应体解析为 *T
func Decode[T any](resp *Response) (*T, error) {
	if resp == nil || resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return nil, nil
	}
	var result T
	if err := resp.Unmarshal(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DoField 执行请求并解析响应中 key 对应的字段，如 {"channel": {...}}
func DoField[T any](req *Request, key string) (*T, error) {
	envelope, err := Do[map[string]json.RawMessage](req)
	if err != nil || envelope == nil {
		return nil, err
	}
	raw, ok := (*envelope)[key]
	if !ok {
		return nil, nil
	}
	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, ErrUnmarshal.WithError(err)
	}
	return &result, nil
}
