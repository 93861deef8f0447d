package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// RESTError 接口返回的带 code 的结构化错误
type RESTError struct {
	Code    int            // 响应体中的 code
	Method  string         // 请求方法
	Path    string         // 请求路径
	Status  int            // HTTP 状态码
	Headers http.Header    // 响应头
	Body    map[string]any // 响应体
	message string
}

// NewRESTError 根据响应体构建 RESTError
func NewRESTError(method, path string, status int, headers http.Header, body map[string]any) *RESTError {
	e := &RESTError{
		Code:    toInt(body["code"]),
		Method:  method,
		Path:    path,
		Status:  status,
		Headers: headers,
		Body:    body,
	}

	var b strings.Builder
	if msg, ok := body["message"]; ok {
		fmt.Fprintf(&b, "%v on %s %s", msg, method, path)
	} else {
		fmt.Fprintf(&b, "Unknown Error on %s %s", method, path)
	}

	var lines []string
	if nested, ok := body["errors"].(map[string]any); ok {
		lines = FlattenErrors(nested, "")
	} else {
		lines = FlattenErrors(body, "")
	}
	if len(lines) > 0 {
		b.WriteString("\n ")
		b.WriteString(strings.Join(lines, "\n "))
	}
	e.message = b.String()
	return e
}

func (e *RESTError) Error() string {
	return e.message
}

// HTTPError 无法解析为结构化错误的 HTTP 错误
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Headers http.Header
	Body    any
	message string
}

// NewHTTPError 构建 HTTPError
func NewHTTPError(method, path string, status int, headers http.Header, body any) *HTTPError {
	e := &HTTPError{
		Method:  method,
		Path:    path,
		Status:  status,
		Headers: headers,
		Body:    body,
	}
	msg := fmt.Sprintf("%d %s on %s %s", status, http.StatusText(status), method, path)
	if m, ok := body.(map[string]any); ok {
		if lines := flattenArrays(m, ""); len(lines) > 0 {
			msg += "\n  " + strings.Join(lines, "\n  ")
		}
	}
	e.message = msg
	return e
}

func (e *HTTPError) Error() string {
	return e.message
}

// FlattenErrors 将嵌套的字段错误展开为 "a.b: msg" 形式的多行
// 跳过 message 和 code 字段，键按字典序输出
func FlattenErrors(errs map[string]any, prefix string) []string {
	var lines []string
	for _, field := range sortedKeys(errs) {
		if field == "message" || field == "code" {
			continue
		}
		key := prefix + field
		switch v := errs[field].(type) {
		case map[string]any:
			if list, ok := v["_errors"].([]any); ok {
				for _, item := range list {
					lines = append(lines, key+": "+errorText(item))
				}
				continue
			}
			lines = append(lines, FlattenErrors(v, key+".")...)
		case []any:
			for _, item := range v {
				lines = append(lines, fmt.Sprintf("%s: %v", key, item))
			}
		}
	}
	return lines
}

// flattenArrays 只展开数组字段
func flattenArrays(errs map[string]any, prefix string) []string {
	var lines []string
	for _, field := range sortedKeys(errs) {
		if field == "message" || field == "code" {
			continue
		}
		if list, ok := errs[field].([]any); ok {
			for _, item := range list {
				lines = append(lines, fmt.Sprintf("%s%s: %v", prefix, field, item))
			}
		}
	}
	return lines
}

func errorText(item any) string {
	if m, ok := item.(map[string]any); ok {
		if msg, ok := m["message"]; ok {
			return fmt.Sprint(msg)
		}
	}
	return fmt.Sprint(item)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		// 非数字的 code（如 "Unauthorized"）记为 0
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}
