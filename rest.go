package guilded

import (
	"context"

	"github.com/tokmz/guilded/pkg/request"
)

// req 构建携带客户端 token 的请求
func (c *Client) req(ctx context.Context, method, endpoint string) (*request.Request, error) {
	if c.rest == nil {
		return nil, ErrRESTDisabled
	}
	return c.rest.R(ctx).SetMethod(method).SetEndpoint(endpoint), nil
}

// exec 发送请求并丢弃响应体
func (c *Client) exec(ctx context.Context, method, endpoint string, body any) error {
	r, err := c.req(ctx, method, endpoint)
	if err != nil {
		return err
	}
	if body != nil {
		r.SetBody(body)
	}
	_, err = r.Do()
	return err
}

// field 发送请求并解析响应中 key 对应的字段
func field[T any](r *request.Request, key string) (*T, error) {
	v, err := request.DoField[T](r, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrUnexpectedResponse.WithMessage("response has no " + key)
	}
	return v, nil
}

// call 组合 req 与 field
func call[T any](c *Client, ctx context.Context, method, endpoint, key string, body any, query map[string]string) (*T, error) {
	r, err := c.req(ctx, method, endpoint)
	if err != nil {
		return nil, err
	}
	if body != nil {
		r.SetBody(body)
	}
	if len(query) > 0 {
		r.SetQueryParams(query)
	}
	return field[T](r, key)
}

// each 对列表中的每个原始数据构建实体
func each[R any, E any](raws []R, build func(R) E) []E {
	out := make([]E, 0, len(raws))
	for _, raw := range raws {
		out = append(out, build(raw))
	}
	return out
}
