package ws

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/event"
	"github.com/tokmz/guilded/pkg/logger"
)

// Socket 事件名称
const (
	EventDebug         = "debug"          // string
	EventError         = "error"          // error
	EventOpen          = "open"           // nil
	EventWelcome       = "welcome"        // *Welcome
	EventDispatch      = "dispatch"       // *Packet，op 为 Event 的数据包
	EventPacket        = "packet"         // *Packet，原始数据包
	EventUnknownPacket = "unknown_packet" // *Packet
	EventDisconnect    = "disconnect"     // error，可能为 nil
)

// State 连接状态
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateWelcomed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateWelcomed:
		return "welcomed"
	default:
		return "unknown"
	}
}

// session 会话状态
type session struct {
	lastMessageID      string
	attempt            int
	alive              bool
	connected          bool
	latency            time.Duration
	lastHeartbeatSent  time.Time
	lastHeartbeatRecv  time.Time
	lastHeartbeatAck   bool
	heartbeatRequested bool
}

// Socket 网关连接状态机
type Socket struct {
	cfg     *Config
	codec   Codec
	clock   clock.Clock
	log     logger.Logger
	metrics Metrics
	bus     *event.Bus

	ctx    context.Context
	cancel context.CancelFunc

	mu                sync.Mutex
	conn              *websocket.Conn
	gen               uint64
	state             State
	sess              session
	token             string
	reconnectInterval time.Duration
	connectTimeout    time.Duration
	connectTimer      *clock.Timer
	reconnectTimer    *clock.Timer
	heartbeatStop     chan struct{}
	dialCancel        context.CancelFunc
	inflater          *inflater
	resumePending     bool
	closed            bool
}

// New 创建网关连接
func New(opts ...Option) (*Socket, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig 使用配置创建网关连接
func NewWithConfig(cfg *Config) (*Socket, error) {
	cfg.normalize()
	codec, err := CodecFor(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	log := cfg.Logger.Named("gateway")
	return &Socket{
		cfg:               cfg,
		codec:             codec,
		clock:             cfg.Clock,
		log:               log,
		metrics:           cfg.Metrics,
		bus:               event.NewBus(event.WithSync(), event.WithLogger(log)),
		ctx:               ctx,
		cancel:            cancel,
		token:             cfg.Token,
		reconnectInterval: cfg.ReconnectInterval,
		connectTimeout:    cfg.ConnectionTimeout,
	}, nil
}

// On 订阅连接事件，处理器在读协程中同步执行
func (s *Socket) On(name string, fn event.Handler) func() {
	return s.bus.On(name, fn)
}

// SetToken 更新 token，下次连接生效
func (s *Socket) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Connect 建立连接，已有连接时返回 ErrAlreadyConnected
func (s *Socket) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateDisconnected {
		s.mu.Unlock()
		s.emitError(ErrAlreadyConnected)
		return ErrAlreadyConnected
	}
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.sess.attempt++
	attempt := s.sess.attempt
	if s.token == "" {
		s.mu.Unlock()
		s.Disconnect(false, ErrInvalidToken)
		return ErrInvalidToken
	}

	s.state = StateConnecting
	s.gen++
	gen := s.gen
	header := s.handshakeHeader()
	resume := header.Get(ResumeHeader) != ""
	dialCtx, cancel := context.WithCancel(ctx)
	s.dialCancel = cancel
	s.connectTimer = s.clock.AfterFunc(s.connectTimeout, func() { s.onConnectTimeout(gen) })
	s.mu.Unlock()

	if s.cfg.Compress {
		s.debug("Initialising zlib-based compression")
	}
	s.log.Debug("connecting to gateway",
		zap.String("url", s.cfg.URL),
		zap.Int("attempt", attempt),
		zap.Bool("resume", resume),
	)

	conn, resp, err := s.cfg.Dialer.DialContext(dialCtx, s.cfg.URL, header)
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if !s.current(gen) {
			return err
		}
		s.Disconnect(s.cfg.Reconnect, err)
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	s.conn = conn
	s.dialCancel = nil
	s.state = StateOpen
	s.sess.alive = true
	var inf *inflater
	if s.cfg.Compress {
		inf = newInflater(s.codec,
			func(p *Packet) { s.onPacket(gen, p) },
			func(err error) { s.onDecodeError(gen, err) },
		)
		s.inflater = inf
	}
	s.mu.Unlock()

	conn.SetPingHandler(func(data string) error { return s.onPing(gen, conn, data) })
	conn.SetPongHandler(func(string) error { s.onPong(gen); return nil })

	s.metrics.IncrementConnections()
	s.debug("Socket connection is open")
	s.bus.Emit(EventOpen, nil)

	go s.readLoop(gen, conn, inf)
	return nil
}

func (s *Socket) handshakeHeader() http.Header {
	header := http.Header{}
	for k, vs := range s.cfg.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	header.Set("Authorization", "Bearer "+s.token)
	if s.cfg.ReplayMissedEvents && s.sess.lastMessageID != "" {
		header.Set(ResumeHeader, s.sess.lastMessageID)
	}
	return header
}

// Disconnect 断开连接，reconnect 决定是否重连
// 已断开且没有待执行的重连时不做任何事
func (s *Socket) Disconnect(reconnect bool, err error) {
	s.mu.Lock()
	if err == nil && s.idleLocked() {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	inf := s.inflater
	s.conn = nil
	s.inflater = nil
	s.gen++
	s.state = StateDisconnected
	s.sess.alive = false
	s.sess.connected = false
	s.stopTimersLocked()
	s.mu.Unlock()

	if inf != nil {
		inf.close()
	}
	code := 0
	if conn != nil {
		closeCode, text := websocket.CloseNormalClosure, "Normal Close"
		if reconnect {
			closeCode, text = CloseReconnect, "Reconnect"
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeCode, text), time.Now().Add(s.cfg.WriteWait))
		_ = conn.Close()
	}

	if err != nil {
		var gerr *errors.GatewayError
		if errors.As(err, &gerr) {
			code = gerr.Code
		}
		if gerr != nil && gerr.Routine() {
			s.debug(gerr.Error())
		} else {
			s.emitError(err)
		}
	}
	s.metrics.SetConnected(false)
	s.metrics.IncrementDisconnects(code)
	s.bus.Emit(EventDisconnect, err)

	var notes []string
	immediate := false
	s.mu.Lock()
	attempt := s.sess.attempt
	if attempt >= s.cfg.ReconnectAttemptLimit {
		notes = append(notes, fmt.Sprintf(
			"Automatically invalidating session due to excessive resume attempts | Attempt %d", attempt))
		s.sess.lastMessageID = ""
	}
	if reconnect && !s.closed {
		s.resetLocked()
		if s.sess.lastMessageID != "" {
			notes = append(notes, fmt.Sprintf(
				"Immediately reconnecting for potential resume | Attempt %d", attempt))
			immediate = true
			s.resumePending = true
		} else {
			delay := s.reconnectInterval
			notes = append(notes, fmt.Sprintf(
				"Queueing reconnect in %dms | Attempt %d", delay.Milliseconds(), attempt))
			s.reconnectTimer = s.clock.AfterFunc(delay, func() { s.reconnect(false) })
			s.reconnectInterval = nextBackoff(delay, rand.Float64(), s.cfg.MaxReconnectInterval)
		}
	} else {
		s.hardResetLocked()
	}
	s.mu.Unlock()

	for _, n := range notes {
		s.debug(n)
	}
	if immediate {
		go s.reconnect(true)
	}
}

// Close 断开连接并停止自动重连
func (s *Socket) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Disconnect(false, nil)
	s.cancel()
	s.bus.Close()
}

func (s *Socket) reconnect(resume bool) {
	s.mu.Lock()
	s.reconnectTimer = nil
	// 续传重连已被之后的 Disconnect 取消
	cancelled := resume && !s.resumePending
	s.resumePending = false
	closed := s.closed
	s.mu.Unlock()
	if closed || cancelled {
		return
	}
	s.metrics.IncrementReconnects(resume)
	_ = s.Connect(s.ctx)
}

// nextBackoff 间隔乘以 [1, 3) 的随机系数，四舍五入到毫秒，不超过上限
func nextBackoff(prev time.Duration, r float64, ceiling time.Duration) time.Duration {
	ms := math.Round(float64(prev.Milliseconds()) * (r*2 + 1))
	next := time.Duration(ms) * time.Millisecond
	return min(next, ceiling)
}

func (s *Socket) stopTimersLocked() {
	if s.heartbeatStop != nil {
		close(s.heartbeatStop)
		s.heartbeatStop = nil
	}
	if s.connectTimer != nil {
		s.connectTimer.Stop()
		s.connectTimer = nil
	}
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.dialCancel != nil {
		s.dialCancel()
		s.dialCancel = nil
	}
	s.resumePending = false
}

// idleLocked 已断开，且没有连接中的拨号或待执行的重连
func (s *Socket) idleLocked() bool {
	return s.state == StateDisconnected && s.conn == nil &&
		s.reconnectTimer == nil && s.dialCancel == nil && !s.resumePending
}

// resetLocked 重置连接级状态，保留续传 ID 与尝试次数
func (s *Socket) resetLocked() {
	s.stopTimersLocked()
	s.conn = nil
	s.sess.alive = false
	s.sess.connected = false
	s.sess.latency = 0
	s.sess.lastHeartbeatSent = time.Time{}
	s.sess.lastHeartbeatRecv = time.Time{}
	s.sess.lastHeartbeatAck = false
	s.sess.heartbeatRequested = false
	s.connectTimeout = s.cfg.ResetTimeout
}

// hardResetLocked 完全重置，下次连接为全新会话
func (s *Socket) hardResetLocked() {
	s.resetLocked()
	s.sess.lastMessageID = ""
	s.sess.attempt = 0
}

func (s *Socket) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

func (s *Socket) onConnectTimeout(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.sess.connected {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.Disconnect(false, ErrConnectionTimeout)
}

func (s *Socket) readLoop(gen uint64, conn *websocket.Conn, inf *inflater) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.onReadError(gen, err)
			return
		}
		if !s.current(gen) {
			return
		}
		if inf != nil {
			if err := inf.feed(data); err != nil && s.current(gen) {
				s.emitError(err)
			}
			continue
		}
		p, err := s.codec.DecodePacket(data)
		if err != nil {
			s.onDecodeError(gen, ErrDecode.WithError(err))
			continue
		}
		s.onPacket(gen, p)
	}
}

func (s *Socket) onReadError(gen uint64, err error) {
	if !s.current(gen) {
		return
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		kind := "Unclean"
		if ce.Code == websocket.CloseNormalClosure {
			kind = "Clean"
		}
		s.debug(fmt.Sprintf("%s WS close: %d: %s", kind, ce.Code, ce.Text))
		reason := ce.Text
		if ce.Code == websocket.CloseAbnormalClosure {
			reason = "Connection lost"
		}
		s.Disconnect(s.cfg.Reconnect, errors.NewGatewayError(reason, ce.Code))
		return
	}
	s.emitError(err)
	s.Disconnect(s.cfg.Reconnect, errors.NewGatewayError("Connection lost", websocket.CloseAbnormalClosure))
}

func (s *Socket) onDecodeError(gen uint64, err error) {
	if !s.current(gen) {
		return
	}
	s.metrics.IncrementDecodeErrors()
	s.emitError(err)
}

func (s *Socket) onPacket(gen uint64, p *Packet) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if p.S != "" {
		s.sess.lastMessageID = p.S
	}
	s.metrics.IncrementPackets(p.Op, p.T)

	switch p.Op {
	case OpEvent:
		s.mu.Unlock()
		s.bus.Emit(EventDispatch, p)
		s.bus.Emit(EventPacket, p)

	case OpWelcome:
		w := &Welcome{Packet: p}
		var err error
		if p.D.IsZero() {
			err = ErrMissingPacketData
		} else if derr := p.D.Decode(w); derr != nil || w.HeartbeatIntervalMs <= 0 {
			err = ErrMalformedWelcome
		}
		if err != nil {
			s.mu.Unlock()
			s.Disconnect(s.cfg.Reconnect, err)
			return
		}
		if s.connectTimer != nil {
			s.connectTimer.Stop()
			s.connectTimer = nil
		}
		s.startHeartbeatLocked(gen, w.HeartbeatInterval())
		s.sess.connected = true
		s.sess.attempt = 0
		s.state = StateWelcomed
		s.mu.Unlock()

		s.metrics.SetConnected(true)
		s.bus.Emit(EventWelcome, w)
		s.bus.Emit(EventPacket, p)

	case OpResume:
		s.sess.lastMessageID = ""
		s.mu.Unlock()
		s.debug("Resume window lapsed, next connection starts a new session")

	default:
		s.mu.Unlock()
		s.bus.Emit(EventUnknownPacket, p)
	}
}

func (s *Socket) startHeartbeatLocked(gen uint64, interval time.Duration) {
	if s.heartbeatStop != nil {
		close(s.heartbeatStop)
	}
	stop := make(chan struct{})
	s.heartbeatStop = stop
	ticker := s.clock.Ticker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.heartbeat(gen)
			}
		}
	}()
}

func (s *Socket) heartbeat(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.conn == nil {
		s.mu.Unlock()
		return
	}
	if s.sess.heartbeatRequested {
		if !s.sess.lastHeartbeatAck {
			s.mu.Unlock()
			s.metrics.IncrementMissedHeartbeats()
			s.emitError(ErrHeartbeatAck)
			return
		}
		s.sess.heartbeatRequested = false
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.sess.heartbeatRequested = true
	s.sess.lastHeartbeatAck = false
	s.sess.lastHeartbeatSent = s.clock.Now()
	s.mu.Unlock()

	s.debug("Heartbeat Requested")
	if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
		s.log.Warn("heartbeat ping failed", zap.Error(err))
	}
}

func (s *Socket) onPing(gen uint64, conn *websocket.Conn, data string) error {
	s.mu.Lock()
	if gen == s.gen {
		s.sess.lastHeartbeatRecv = s.clock.Now()
	}
	s.mu.Unlock()
	err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(s.cfg.WriteWait))
	if err == websocket.ErrCloseSent {
		return nil
	}
	return err
}

func (s *Socket) onPong(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	latency := s.clock.Since(s.sess.lastHeartbeatSent)
	s.sess.latency = latency
	s.sess.lastHeartbeatAck = true
	s.mu.Unlock()

	s.metrics.ObserveHeartbeatLatency(latency)
	s.debug("Heartbeat Acknowledged")
}

func (s *Socket) debug(msg string) {
	s.log.Debug(msg)
	s.bus.Emit(EventDebug, msg)
}

func (s *Socket) emitError(err error) {
	s.log.Warn("gateway error", zap.Error(err))
	s.bus.Emit(EventError, err)
}

// State 当前连接状态
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected 是否已收到 welcome
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.connected
}

// Alive 底层连接是否打开
func (s *Socket) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.alive
}

// Latency 最近一次心跳往返延迟
func (s *Socket) Latency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.latency
}

// LastMessageID 最近收到的消息 ID，用于续传
func (s *Socket) LastMessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.lastMessageID
}

// Attempt 当前连接尝试次数
func (s *Socket) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.attempt
}

// ReconnectInterval 下一次非续传重连的等待间隔
func (s *Socket) ReconnectInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnectInterval
}
