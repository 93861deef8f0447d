package guilded

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/pkg/config"
	"github.com/tokmz/guilded/pkg/event"
	"github.com/tokmz/guilded/pkg/gateway"
	"github.com/tokmz/guilded/pkg/logger"
	"github.com/tokmz/guilded/pkg/request"
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/pkg/ws"
)

// Client 组合 REST 管线、网关连接与实体缓存
type Client struct {
	opts  *ClientOptions
	log   logger.Logger
	clock clock.Clock

	rest    *request.Client
	socket  *ws.Socket
	gateway *gateway.Handler
	bus     *event.Bus
	store   *cache.Store

	servers *cache.TypedCollection[string, structures.RawServer, *structures.Server]
	users   *cache.TypedCollection[string, structures.RawUser, *structures.User]

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	token     string
	startTime time.Time
	user      *structures.ClientUser
	unsubs    []func()
}

// New 创建客户端，token 为空时返回 ErrNoToken
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Store == nil {
		o.Store = cache.NewStore(o.HydrationMissTTL, time.Minute)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		opts:   o,
		log:    o.Logger,
		clock:  o.Clock,
		store:  o.Store,
		bus:    event.NewBus(event.WithLogger(o.Logger.Named("events"))),
		ctx:    ctx,
		cancel: cancel,
		token:  token,
	}
	c.servers = cache.NewTypedCollection[string, structures.RawServer, *structures.Server](structures.NewServer, cache.Unlimited, c)
	c.users = cache.NewTypedCollection[string, structures.RawUser, *structures.User](structures.NewUser, cache.Unlimited, c)

	if o.REST {
		c.rest = request.NewWithConfig(c.restConfig())
	}

	socket, err := ws.NewWithConfig(c.socketConfig())
	if err != nil {
		cancel()
		c.bus.Close()
		if c.rest != nil {
			c.rest.Close()
		}
		return nil, err
	}
	c.socket = socket
	c.gateway = gateway.New(c,
		gateway.WithLogger(o.Logger),
		gateway.WithStore(o.Store),
		gateway.WithMissTTL(o.HydrationMissTTL),
		gateway.WithDedupeCapacity(o.DedupeCapacity),
	)
	return c, nil
}

// NewFromSettings 按配置文件创建客户端，opts 在配置之后应用
func NewFromSettings(s *config.Settings, opts ...Option) (*Client, error) {
	base := []Option{
		WithCollectionLimits(structures.Limits{
			Docs:                 s.Collections.Docs,
			Messages:             s.Collections.Messages,
			ScheduledEvents:      s.Collections.ScheduledEvents,
			ScheduledEventsRSVPs: s.Collections.ScheduledEventsRSVPs,
			TopicComments:        s.Collections.TopicComments,
			Topics:               s.Collections.Topics,
		}),
		WithCompress(s.Gateway.Compress),
		WithEncoding(s.Gateway.Encoding),
		WithReconnect(s.Gateway.Reconnect),
		WithReconnectAttemptLimit(s.Gateway.ReconnectAttemptLimit),
		WithReplayMissedEvents(s.Gateway.ReplayMissedEvents),
		WithConnectionTimeout(s.Gateway.ConnectionTimeout),
		WithREST(!s.REST.Disabled),
		WithRESTOptions(RESTOptions{
			BaseURL:                    s.REST.BaseURL,
			Host:                       s.REST.Host,
			UserAgent:                  s.REST.UserAgent,
			RequestTimeout:             s.REST.Timeout,
			LatencyThreshold:           s.REST.LatencyThreshold,
			RatelimiterOffset:          s.REST.RatelimiterOffset,
			DisableLatencyCompensation: s.REST.DisableLatencyCompensation,
			Tracing:                    s.Tracing.Enabled,
		}),
	}
	if s.Gateway.URL != "" {
		base = append(base, WithGatewayURL(s.Gateway.URL))
	}
	return New(s.Token, append(base, opts...)...)
}

func (c *Client) restConfig() *request.Config {
	ro := c.opts.RESTOptions
	cfg := request.DefaultConfig()
	cfg.Token = c.token
	cfg.Logger = c.log
	cfg.Clock = c.clock
	cfg.EnableTracing = ro.Tracing
	cfg.Transport = ro.Transport
	cfg.Host = ro.Host
	cfg.RatelimiterOffset = ro.RatelimiterOffset
	cfg.DisableLatencyCompensation = ro.DisableLatencyCompensation
	if ro.BaseURL != "" {
		cfg.BaseURL = ro.BaseURL
	}
	if ro.UserAgent != "" {
		cfg.UserAgent = ro.UserAgent
	}
	if ro.RequestTimeout > 0 {
		cfg.Timeout = ro.RequestTimeout
	}
	if ro.LatencyThreshold > 0 {
		cfg.LatencyThreshold = ro.LatencyThreshold
	}
	cfg.OnError = func(err error) { c.Emit(EventError, err) }
	cfg.OnWarn = func(msg string) { c.Emit(EventWarn, msg) }
	return cfg
}

func (c *Client) socketConfig() *ws.Config {
	o := c.opts
	cfg := ws.DefaultConfig()
	cfg.URL = o.GatewayURL
	cfg.Token = c.token
	cfg.Compress = o.Compress
	cfg.Encoding = o.Encoding
	cfg.Reconnect = o.Reconnect
	cfg.ReconnectAttemptLimit = o.ReconnectAttemptLimit
	cfg.ReplayMissedEvents = o.ReplayMissedEvents
	cfg.ConnectionTimeout = o.ConnectionTimeout
	cfg.Dialer = o.Dialer
	cfg.Clock = c.clock
	cfg.Logger = c.log
	cfg.Metrics = o.Metrics
	return cfg
}

// Options 客户端配置
func (c *Client) Options() ClientOptions {
	return *c.opts
}

// Token 当前 token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken 更新 token，REST 立即生效，网关在下次连接时生效
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if c.rest != nil {
		c.rest.SetToken(token)
	}
	c.socket.SetToken(token)
}

// REST 请求管线，REST 关闭时为 nil
func (c *Client) REST() *request.Client { return c.rest }

// Socket 网关连接
func (c *Client) Socket() *ws.Socket { return c.socket }

// Gateway 事件分发器
func (c *Client) Gateway() *gateway.Handler { return c.gateway }

// Servers 服务器集合
func (c *Client) Servers() *cache.TypedCollection[string, structures.RawServer, *structures.Server] {
	return c.servers
}

// Users 用户集合
func (c *Client) Users() *cache.TypedCollection[string, structures.RawUser, *structures.User] {
	return c.users
}

// LookupServer 获取已缓存的服务器
func (c *Client) LookupServer(id string) (*structures.Server, bool) {
	return c.servers.Get(id)
}

// LookupUser 获取已缓存的用户
func (c *Client) LookupUser(id string) (*structures.User, bool) {
	return c.users.Get(id)
}

// UpdateUser 合并用户到缓存
func (c *Client) UpdateUser(raw structures.RawUser) *structures.User {
	return c.users.Update(raw)
}

// Limits 子集合上限
func (c *Client) Limits() structures.Limits {
	return c.opts.CollectionLimits
}

// User 当前机器人用户，收到 welcome 前为 nil
func (c *Client) User() *structures.ClientUser {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// SelfID 当前机器人用户 id
func (c *Client) SelfID() string {
	if u := c.User(); u != nil {
		return u.ID
	}
	return ""
}

// StartTime 最近一次 welcome 的时间，未连接时为零值
func (c *Client) StartTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startTime
}

// Uptime 连接时长，未连接时为 0
func (c *Client) Uptime() time.Duration {
	start := c.StartTime()
	if start.IsZero() {
		return 0
	}
	return c.clock.Since(start)
}

// On 订阅客户端事件，处理器按发布顺序在单独的协程中执行
func (c *Client) On(name string, fn event.Handler) func() {
	return c.bus.On(name, fn)
}

// Once 订阅一次
func (c *Client) Once(name string, fn event.Handler) func() {
	return c.bus.Once(name, fn)
}

// OnAny 订阅全部事件
func (c *Client) OnAny(fn event.Handler) func() {
	return c.bus.OnAny(fn)
}

// Emit 发布事件
func (c *Client) Emit(name string, data any) {
	c.bus.Emit(name, data)
}

// Wait 阻塞直到收到指定事件
func (c *Client) Wait(ctx context.Context, name string) (event.Event, error) {
	return c.bus.Wait(ctx, name)
}

// Connect 连接网关，重复调用不会重复注册处理器
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.unsubs == nil {
		c.unsubs = []func(){
			c.socket.On(ws.EventWelcome, c.onWelcome),
			c.socket.On(ws.EventDisconnect, c.onDisconnect),
			c.socket.On(ws.EventDispatch, c.onDispatch),
			c.socket.On(ws.EventError, func(e event.Event) { c.Emit(EventError, e.Data) }),
			c.socket.On(ws.EventDebug, func(e event.Event) { c.Emit(EventDebug, e.Data) }),
			c.socket.On(ws.EventUnknownPacket, c.onUnknownPacket),
		}
	}
	c.mu.Unlock()
	return c.socket.Connect(ctx)
}

// Disconnect 断开网关连接，不重连
func (c *Client) Disconnect() {
	c.socket.Disconnect(false, nil)
}

// Close 断开连接并释放资源，等待已入队事件投递完成
// 事件处理器与 Close 共用同一个投递协程，在处理器中关闭需使用 go client.Close()
func (c *Client) Close() {
	c.socket.Close()
	c.cancel()
	c.gateway.Close()
	if c.rest != nil {
		c.rest.Close()
	}
	c.mu.Lock()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	c.mu.Unlock()
	c.bus.Close()
}

type welcomeData struct {
	User structures.RawClientUser `json:"user"`
}

func (c *Client) onWelcome(e event.Event) {
	w, ok := e.Data.(*ws.Welcome)
	if !ok {
		return
	}
	var data welcomeData
	if w.Packet != nil {
		if err := w.Packet.D.Decode(&data); err != nil {
			c.log.Warn("failed to decode welcome user", zap.Error(err))
		}
	}
	if data.User.BotID == "" {
		data.User.BotID = w.BotID
	}
	user := structures.NewClientUser(data.User, c)

	c.mu.Lock()
	c.startTime = c.clock.Now()
	c.user = user
	c.mu.Unlock()

	c.log.Info("gateway ready", zap.String("user_id", user.ID), zap.String("bot_id", user.BotID))
	c.Emit(EventReady, user)
}

func (c *Client) onDisconnect(e event.Event) {
	c.mu.Lock()
	c.startTime = time.Time{}
	c.mu.Unlock()

	err, _ := e.Data.(error)
	c.Emit(EventDisconnect, err)
}

// onDispatch 在读协程中同步分发，保证同一连接的事件顺序
func (c *Client) onDispatch(e event.Event) {
	p, ok := e.Data.(*ws.Packet)
	if !ok {
		return
	}
	if err := c.gateway.HandleMessage(c.ctx, p.T, p); err != nil {
		c.log.Warn("failed to handle gateway event", zap.String("type", p.T), zap.Error(err))
		c.Emit(EventError, err)
	}
}

func (c *Client) onUnknownPacket(e event.Event) {
	if p, ok := e.Data.(*ws.Packet); ok {
		c.Emit(EventDebug, "Unknown packet | op "+itoa(int(p.Op))+" | t "+p.T)
	}
}
