package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/logger"
	"github.com/tokmz/guilded/pkg/ratelimit"
	"github.com/tokmz/guilded/pkg/tracing"
)

type requestIDKey struct{}

// RequestIDFromContext 获取请求关联 ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client REST 客户端，按路由限流并处理 429/502 重试
type Client struct {
	cfg     *Config
	client  *http.Client
	latency *ratelimit.LatencyRef
	clock   clock.Clock
	log     logger.Logger

	mu          sync.Mutex
	token       string
	buckets     map[string]*ratelimit.SequentialBucket
	globalBlock bool
	readyQueue  []func()
}

// New 创建 REST 客户端
func New(opts ...Option) *Client {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig 使用配置创建 REST 客户端
func NewWithConfig(cfg *Config) *Client {
	cfg.normalize()
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Transport: cfg.buildTransport()},
		latency: ratelimit.NewLatencyRef(cfg.RatelimiterOffset),
		clock:   cfg.Clock,
		log:     cfg.Logger.Named("rest"),
		token:   cfg.Token,
		buckets: make(map[string]*ratelimit.SequentialBucket),
	}
}

// Latency 共享的延迟估计
func (c *Client) Latency() *ratelimit.LatencyRef {
	return c.latency
}

// SetToken 更新默认 token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token 当前默认 token
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// GlobalBlocked 是否处于全局限流
func (c *Client) GlobalBlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.globalBlock
}

// Bucket 返回路由对应的限流桶，不存在时创建
func (c *Client) Bucket(route string) *ratelimit.SequentialBucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buckets[route]
	if !ok {
		b = ratelimit.NewSequentialBucket(1, c.latency, ratelimit.WithClock(c.clock))
		c.buckets[route] = b
	}
	return b
}

// Close 关闭空闲连接
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// Request 发送请求，返回最终成功响应或错误
// 429 与 502（有限次数）在内部重试，对调用方透明
func (c *Client) Request(ctx context.Context, opts Options) (*Response, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	route := opts.Route
	if route == "" {
		route = c.cfg.BaseURL + opts.Endpoint
	}
	bucket := c.Bucket(route)

	body, contentType, err := encodeBody(&opts)
	if err != nil {
		return nil, err
	}
	if RequestIDFromContext(ctx) == "" {
		ctx = context.WithValue(ctx, requestIDKey{}, uuid.NewString())
	}

	attempts := 0
	for {
		done, err := c.acquire(ctx, bucket, opts.authenticated(), opts.Priority)
		if err != nil {
			return nil, err
		}

		resp, err := c.doOnce(ctx, &opts, body, contentType)
		if err != nil {
			done()
			return nil, err
		}
		retryAfter := c.applyRateLimit(ctx, bucket, &opts, route, resp)

		switch {
		case resp.StatusCode < http.StatusMultipleChoices:
			done()
			return resp, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter
			if resp.Headers.Get("x-ratelimit-scope") == "shared" {
				if m, ok := resp.Data.(map[string]any); ok {
					if v, ok := m["retry_after"].(float64); ok {
						delay = seconds(v)
					}
				}
			}
			c.log.DebugContext(ctx, "rate limited, retrying",
				zap.String("method", opts.Method),
				zap.String("route", route),
				zap.Duration("delay", delay),
			)
			if delay > 0 {
				if err := c.sleep(ctx, delay); err != nil {
					done()
					return nil, err
				}
			}
			done()

		case resp.StatusCode == http.StatusBadGateway && attempts+1 < c.cfg.Retry.MaxAttempts:
			attempts++
			done()
			if err := c.sleep(ctx, c.cfg.Retry.backoff()); err != nil {
				return nil, err
			}

		default:
			done()
			return nil, responseError(&opts, resp)
		}
	}
}

// acquire 进入路由桶排队，返回本次占用的释放函数
// 全局限流期间，认证请求先进入就绪队列，解除后按顺序入桶
func (c *Client) acquire(ctx context.Context, bucket *ratelimit.SequentialBucket, auth, priority bool) (func(), error) {
	granted := make(chan func(), 1)
	enqueue := func() {
		bucket.Queue(func(done func()) { granted <- done }, priority)
	}

	c.mu.Lock()
	if auth && c.globalBlock {
		if priority {
			c.readyQueue = append([]func(){enqueue}, c.readyQueue...)
		} else {
			c.readyQueue = append(c.readyQueue, enqueue)
		}
		c.mu.Unlock()
	} else {
		c.mu.Unlock()
		enqueue()
	}

	select {
	case done := <-granted:
		return done, nil
	case <-ctx.Done():
		go func() {
			done := <-granted
			done()
		}()
		return nil, ctx.Err()
	}
}

func (c *Client) blockGlobal(d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	c.mu.Lock()
	c.globalBlock = true
	c.mu.Unlock()
	c.clock.AfterFunc(d, c.globalUnblock)
}

func (c *Client) globalUnblock() {
	c.mu.Lock()
	c.globalBlock = false
	queue := c.readyQueue
	c.readyQueue = nil
	c.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	t := c.clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// doOnce 执行单次 HTTP 请求
func (c *Client) doOnce(ctx context.Context, opts *Options, body []byte, contentType string) (*Response, error) {
	rawURL := c.cfg.BaseURL + opts.Endpoint
	if len(opts.Query) > 0 {
		rawURL += "?" + opts.Query.Encode()
	}

	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.cfg.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	}
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, opts.Method, rawURL, reader)
	if err != nil {
		return nil, ErrInvalidURL.WithError(err)
	}
	c.setHeaders(req, opts, contentType)

	for _, interceptor := range c.cfg.Interceptors {
		if err := interceptor.BeforeRequest(attemptCtx, req); err != nil {
			return nil, ErrRequestFailed.WithError(err)
		}
	}

	var span trace.Span
	if c.cfg.EnableTracing {
		var spanCtx context.Context
		spanCtx, span = tracing.StartSpan(attemptCtx, "REST "+opts.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.method", opts.Method),
				attribute.String("http.url", req.URL.String()),
				attribute.String("guilded.request_id", RequestIDFromContext(ctx)),
			),
		)
		defer span.End()
		req = req.WithContext(spanCtx)
	}

	start := c.clock.Now()
	raw, httpResp, err := c.send(req)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			err = ErrTimeout.WithMessage(fmt.Sprintf("Request Timed Out (>%dms) on %s %s",
				c.cfg.Timeout.Milliseconds(), opts.Method, opts.Endpoint))
		}
		if span != nil {
			tracing.RecordError(span, err)
		}
		c.log.ErrorContext(ctx, "rest request failed",
			zap.String("method", opts.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       raw,
		Duration:   c.clock.Since(start),
		Request:    req,
	}
	resp.Data = c.parseBody(ctx, resp)

	if span != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		if resp.StatusCode >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		}
	}

	for _, interceptor := range c.cfg.Interceptors {
		if err := interceptor.AfterResponse(attemptCtx, resp); err != nil {
			return nil, ErrRequestFailed.WithError(err)
		}
	}
	return resp, nil
}

func (c *Client) send(req *http.Request) ([]byte, *http.Response, error) {
	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer httpResp.Body.Close()
	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, nil, err
	}
	return raw, httpResp, nil
}

func (c *Client) setHeaders(req *http.Request, opts *Options, contentType string) {
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.Host != "" {
		req.Host = c.cfg.Host
	}
	token := opts.Token
	if token == "" && opts.Auth {
		token = c.Token()
	}
	// 没有 token 时不带认证头，由服务端返回 401
	if token != "" {
		req.Header.Set("Authorization", bearer(token))
	}
}

// parseBody 204 返回 nil；application/json 解析为 JSON，失败时保留原始字符串
func (c *Client) parseBody(ctx context.Context, resp *Response) any {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if !resp.IsJSON() {
		return resp.Body
	}
	var v any
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		c.log.WarnContext(ctx, "malformed json response", zap.Error(err))
		c.reportError(ErrUnmarshal.WithError(err))
		return string(resp.Body)
	}
	return v
}

// applyRateLimit 根据响应头更新桶状态、延迟与时钟偏移，返回 retry-after
func (c *Client) applyRateLimit(ctx context.Context, b *ratelimit.SequentialBucket, opts *Options, route string, resp *Response) time.Duration {
	now := c.clock.Now()
	if !c.cfg.DisableLatencyCompensation {
		c.latency.Observe(resp.Duration)
	}
	if date := resp.Headers.Get("Date"); date != "" {
		if serverTime, err := http.ParseTime(date); err == nil {
			prev, drifted := c.latency.ObserveServerTime(serverTime, now, c.cfg.LatencyThreshold)
			if drifted {
				c.warn(fmt.Sprintf("Your clock is %dms behind Guilded's server clock. Please check your connection and system time.",
					prev.Milliseconds()))
			}
		}
	}

	h := resp.Headers
	if v := h.Get("x-ratelimit-limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			b.SetLimit(n)
		}
	}
	limit, _, _ := b.State()
	remainingHeader, hasRemaining := headerValue(h, "x-ratelimit-remaining")
	_, hasLimit := headerValue(h, "x-ratelimit-limit")
	if opts.Method != http.MethodGet && (!hasRemaining || !hasLimit) && limit != 1 {
		c.log.DebugContext(ctx, "missing ratelimit headers",
			zap.String("method", opts.Method),
			zap.String("route", route),
			zap.Int("status", resp.StatusCode),
		)
	}

	remaining := 1
	if hasRemaining {
		remaining = 0
		if n, err := strconv.ParseFloat(remainingHeader, 64); err == nil && !math.IsNaN(n) {
			remaining = int(n)
		}
	}
	b.SetRemaining(remaining)

	var retryAfter time.Duration
	if v, ok := headerValue(h, "x-ratelimit-reset-after"); ok {
		retryAfter = parseSeconds(v)
	} else if v, ok := headerValue(h, "retry-after"); ok {
		retryAfter = parseSeconds(v)
	}
	if retryAfter >= 0 {
		if h.Get("x-ratelimit-global") != "" {
			c.blockGlobal(retryAfter)
		} else {
			b.SetReset(now.Add(retryAfter))
		}
	}
	return retryAfter
}

func (c *Client) reportError(err error) {
	if c.cfg.OnError != nil {
		c.cfg.OnError(err)
	}
}

func (c *Client) warn(msg string) {
	c.log.Warn(msg)
	if c.cfg.OnWarn != nil {
		c.cfg.OnWarn(msg)
	}
}

// encodeBody GET 不带请求体；有文件或表单时使用 multipart，否则为 JSON
func encodeBody(opts *Options) ([]byte, string, error) {
	if opts.Method == http.MethodGet {
		return nil, "", nil
	}
	var payload []byte
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", ErrMarshal.WithError(err)
		}
		payload = data
	}
	if len(opts.Files) > 0 || len(opts.Form) > 0 {
		return buildMultipart(opts.Form, opts.Files, payload)
	}
	if payload == nil {
		return nil, "", nil
	}
	return payload, "application/json", nil
}

// responseError 响应体含 code 字段时为 RESTError，否则为 HTTPError
func responseError(opts *Options, resp *Response) error {
	path := resp.Request.URL.Path
	if m, ok := resp.Data.(map[string]any); ok {
		if _, ok := m["code"]; ok {
			return errors.NewRESTError(opts.Method, path, resp.StatusCode, resp.Headers, m)
		}
	}
	return errors.NewHTTPError(opts.Method, path, resp.StatusCode, resp.Headers, resp.Data)
}

func headerValue(h http.Header, key string) (string, bool) {
	vs, ok := h[http.CanonicalHeaderKey(key)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseSeconds(v string) time.Duration {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return seconds(f)
}

func seconds(f float64) time.Duration {
	return time.Duration(f*1000) * time.Millisecond
}

// AuthRequest 携带客户端 token 发送请求
func (c *Client) AuthRequest(ctx context.Context, opts Options) (*Response, error) {
	opts.Auth = true
	return c.Request(ctx, opts)
}
