package request

import (
	"context"
	"net/http"
	"net/url"
)

// Request 链式请求构建器
type Request struct {
	client *Client
	ctx    context.Context
	opts   Options
}

func newRequest(c *Client, method, endpoint string) *Request {
	return &Request{
		client: c,
		ctx:    context.Background(),
		opts: Options{
			Method:   method,
			Endpoint: endpoint,
			Query:    make(url.Values),
			Headers:  make(map[string]string),
			Auth:     true,
		},
	}
}

// SetMethod 设置请求方法
func (r *Request) SetMethod(method string) *Request {
	r.opts.Method = method
	return r
}

// SetEndpoint 设置接口路径
func (r *Request) SetEndpoint(endpoint string) *Request {
	r.opts.Endpoint = endpoint
	return r
}

// SetRoute 设置限流路由
func (r *Request) SetRoute(route string) *Request {
	r.opts.Route = route
	return r
}

// SetHeader 设置请求头
func (r *Request) SetHeader(k, v string) *Request {
	r.opts.Headers[k] = v
	return r
}

// SetQuery 设置查询参数
func (r *Request) SetQuery(k, v string) *Request {
	r.opts.Query.Set(k, v)
	return r
}

// SetQueryParams 批量设置查询参数
func (r *Request) SetQueryParams(params map[string]string) *Request {
	for k, v := range params {
		r.opts.Query.Set(k, v)
	}
	return r
}

// SetBody 设置 JSON 请求体，发送时序列化
func (r *Request) SetBody(body any) *Request {
	r.opts.Body = body
	return r
}

// SetFile 添加上传文件
func (r *Request) SetFile(name string, contents []byte) *Request {
	r.opts.Files = append(r.opts.Files, File{Name: name, Contents: contents})
	return r
}

// SetFormData 设置 multipart 表单字段
func (r *Request) SetFormData(data map[string]string) *Request {
	r.opts.Form = data
	return r
}

// SetAuth 是否携带客户端 token
func (r *Request) SetAuth(auth bool) *Request {
	r.opts.Auth = auth
	return r
}

// SetToken 使用指定 token
func (r *Request) SetToken(token string) *Request {
	r.opts.Token = token
	return r
}

// SetPriority 设置插队
func (r *Request) SetPriority(priority bool) *Request {
	r.opts.Priority = priority
	return r
}

// SetContext 设置请求上下文
func (r *Request) SetContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Options 返回当前请求参数
func (r *Request) Options() Options {
	return r.opts
}

// Do 执行请求
func (r *Request) Do() (*Response, error) {
	return r.client.Request(r.ctx, r.opts)
}

// Get 创建 GET 请求
func (c *Client) Get(endpoint string) *Request {
	return newRequest(c, http.MethodGet, endpoint)
}

// Post 创建 POST 请求
func (c *Client) Post(endpoint string) *Request {
	return newRequest(c, http.MethodPost, endpoint)
}

// Put 创建 PUT 请求
func (c *Client) Put(endpoint string) *Request {
	return newRequest(c, http.MethodPut, endpoint)
}

// Patch 创建 PATCH 请求
func (c *Client) Patch(endpoint string) *Request {
	return newRequest(c, http.MethodPatch, endpoint)
}

// Delete 创建 DELETE 请求
func (c *Client) Delete(endpoint string) *Request {
	return newRequest(c, http.MethodDelete, endpoint)
}

// R 创建通用请求构建器
func (c *Client) R(ctx context.Context) *Request {
	r := newRequest(c, "", "")
	r.ctx = ctx
	return r
}
