package request

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Methods 支持的请求方法
var Methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// File 上传文件
type File struct {
	Name     string
	Contents []byte
}

// Options 单个请求的参数
type Options struct {
	Method   string            // 请求方法
	Endpoint string            // 接口路径，如 /channels/xxx
	Route    string            // 限流路由，默认 BaseURL + Endpoint
	Query    url.Values        // 查询参数
	Body     any               // JSON 请求体（非 GET）
	Files    []File            // 上传文件，存在时使用 multipart
	Form     map[string]string // multipart 表单字段
	Headers  map[string]string // 请求头
	Auth     bool              // 使用客户端 token
	Token    string            // 显式 token，优先于 Auth
	Priority bool              // 插队
}

func (o *Options) authenticated() bool {
	return o.Auth || o.Token != ""
}

func (o *Options) normalize() error {
	o.Method = strings.ToUpper(o.Method)
	if !slices.Contains(Methods, o.Method) {
		return ErrInvalidMethod.WithMessage(`Invalid Method "` + o.Method + `"`)
	}
	if !strings.HasPrefix(o.Endpoint, "/") {
		o.Endpoint = "/" + o.Endpoint
	}
	return nil
}

func bearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
