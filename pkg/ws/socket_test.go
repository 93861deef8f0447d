package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/event"
)

type testServer struct {
	*httptest.Server
	conns   chan *websocket.Conn
	headers chan http.Header
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{
		conns:   make(chan *websocket.Conn, 8),
		headers: make(chan http.Header, 8),
	}
	up := websocket.Upgrader{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.headers <- r.Header.Clone()
		ts.conns <- conn
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) accept(t *testing.T) (*websocket.Conn, http.Header) {
	t.Helper()
	select {
	case conn := <-ts.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn, <-ts.headers
	case <-time.After(2 * time.Second):
		t.Fatal("no gateway connection accepted")
		return nil, nil
	}
}

type recorder struct {
	ch chan event.Event
}

func record(s *Socket) *recorder {
	r := &recorder{ch: make(chan event.Event, 256)}
	s.bus.OnAny(func(e event.Event) {
		select {
		case r.ch <- e:
		default:
		}
	})
	return r
}

func (r *recorder) waitFor(t *testing.T, name string) event.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-r.ch:
			if e.Name == name {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", name)
			return event.Event{}
		}
	}
}

// until 收集事件直到指定事件出现（包含该事件）
func (r *recorder) until(t *testing.T, name string) []event.Event {
	t.Helper()
	var got []event.Event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-r.ch:
			got = append(got, e)
			if e.Name == name {
				return got
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", name)
			return got
		}
	}
}

func newTestSocket(t *testing.T, url string, opts ...Option) *Socket {
	t.Helper()
	base := []Option{WithURL(url), WithToken("tok"), WithReconnect(false)}
	s, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func welcomeFrame(intervalMs int) map[string]any {
	return map[string]any{
		"op": 1,
		"d":  map[string]any{"heartbeatIntervalMs": intervalMs, "lastMessageId": "", "botId": "bot1"},
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	_ = conn.Close()
}

func TestSocketWelcomeAndDispatch(t *testing.T) {
	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL())
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, header := ts.accept(t)
	assert.Equal(t, "Bearer tok", header.Get("Authorization"))
	assert.Empty(t, header.Get(ResumeHeader))

	require.NoError(t, conn.WriteJSON(welcomeFrame(30000)))
	w := rec.waitFor(t, EventWelcome).Data.(*Welcome)
	assert.Equal(t, 30*time.Second, w.HeartbeatInterval())
	assert.Equal(t, "bot1", w.BotID)
	assert.True(t, s.Connected())
	assert.Equal(t, StateWelcomed, s.State())

	require.NoError(t, conn.WriteJSON(map[string]any{
		"op": 0, "t": "ChatMessageCreated", "s": "m1",
		"d": map[string]any{"serverId": "srv"},
	}))
	p := rec.waitFor(t, EventDispatch).Data.(*Packet)
	assert.Equal(t, "ChatMessageCreated", p.T)
	var payload struct {
		ServerID string `json:"serverId"`
	}
	require.NoError(t, p.D.Decode(&payload))
	assert.Equal(t, "srv", payload.ServerID)
	assert.Equal(t, "m1", s.LastMessageID())
}

func TestSocketMalformedWelcome(t *testing.T) {
	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL())
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	require.NoError(t, conn.WriteJSON(map[string]any{"op": 1, "d": map[string]any{"botId": "x"}}))

	err := rec.waitFor(t, EventError).Data.(error)
	assert.True(t, errors.Is(err, ErrMalformedWelcome))
	rec.waitFor(t, EventDisconnect)
	assert.Equal(t, StateDisconnected, s.State())
	assert.False(t, s.Connected())
}

func TestSocketResumeThenFreshSession(t *testing.T) {
	ts := newTestServer(t)
	mock := clock.NewMock()
	s := newTestSocket(t, ts.wsURL(), WithReconnect(true), WithClock(mock))
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	c1, h1 := ts.accept(t)
	assert.Empty(t, h1.Get(ResumeHeader))
	require.NoError(t, c1.WriteJSON(welcomeFrame(30000)))
	require.NoError(t, c1.WriteJSON(map[string]any{"op": 0, "t": "Noop", "s": "m1", "d": map[string]any{}}))
	rec.waitFor(t, EventDispatch)

	closeWith(c1, websocket.CloseGoingAway, "going away")
	c2, h2 := ts.accept(t)
	assert.Equal(t, "m1", h2.Get(ResumeHeader))

	require.NoError(t, c2.WriteJSON(map[string]any{"op": 2}))
	require.Eventually(t, func() bool { return s.LastMessageID() == "" }, time.Second, 5*time.Millisecond)

	closeWith(c2, websocket.CloseGoingAway, "going away")
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.reconnectTimer != nil
	}, time.Second, 5*time.Millisecond)

	mock.Add(10 * time.Second)
	_, h3 := ts.accept(t)
	assert.Empty(t, h3.Get(ResumeHeader))
}

func TestBackoffGrowth(t *testing.T) {
	s := newTestSocket(t, "ws://127.0.0.1:0", WithReconnect(true), WithClock(clock.NewMock()))

	prev := s.ReconnectInterval()
	assert.Equal(t, 10*time.Second, prev)
	for range 5 {
		s.Disconnect(true, nil)
		next := s.ReconnectInterval()
		assert.GreaterOrEqual(t, next, prev)
		assert.LessOrEqual(t, next, 30*time.Second)
		prev = next
	}

	assert.Equal(t, 10*time.Second, nextBackoff(10*time.Second, 0, 30*time.Second))
	assert.Equal(t, 20*time.Second, nextBackoff(10*time.Second, 0.5, 30*time.Second))
	assert.Equal(t, 30*time.Second, nextBackoff(20*time.Second, 0.99, 30*time.Second))
}

func TestSocketHeartbeatWithoutAck(t *testing.T) {
	ts := newTestServer(t)
	mock := clock.NewMock()
	s := newTestSocket(t, ts.wsURL(), WithClock(mock))
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	require.NoError(t, conn.WriteJSON(welcomeFrame(1000)))
	rec.waitFor(t, EventWelcome)

	// 服务端不读取，因此不会回复 pong
	mock.Add(time.Second)
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.sess.heartbeatRequested
	}, time.Second, 5*time.Millisecond)

	mock.Add(time.Second)
	err := rec.waitFor(t, EventError).Data.(error)
	assert.True(t, errors.Is(err, ErrHeartbeatAck))
	assert.True(t, s.Connected())
}

func TestSocketHeartbeatAcknowledged(t *testing.T) {
	ts := newTestServer(t)
	mock := clock.NewMock()
	s := newTestSocket(t, ts.wsURL(), WithClock(mock))
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	require.NoError(t, conn.WriteJSON(welcomeFrame(1000)))
	rec.waitFor(t, EventWelcome)

	mock.Add(time.Second)
	events := rec.until(t, EventDebug)
	assert.Equal(t, "Heartbeat Requested", events[len(events)-1].Data)
	assert.Equal(t, "Heartbeat Acknowledged", rec.waitFor(t, EventDebug).Data)

	s.mu.Lock()
	acked := s.sess.lastHeartbeatAck
	s.mu.Unlock()
	assert.True(t, acked)
}

func TestSocketCompressedFrames(t *testing.T) {
	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL(), WithCompress(true))
	rec := record(s)

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	compress := func(v any) []byte {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		_, err = zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Flush())
		out := append([]byte(nil), buf.Bytes()...)
		buf.Reset()
		return out
	}

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)

	w := compress(welcomeFrame(30000))
	half := len(w) / 2
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, w[:half]))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, append(w[half:], trailer...)))
	rec.waitFor(t, EventWelcome)

	e := compress(map[string]any{"op": 0, "t": "DocCreated", "s": "m9", "d": map[string]any{}})
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, e))
	p := rec.waitFor(t, EventDispatch).Data.(*Packet)
	assert.Equal(t, "DocCreated", p.T)
	assert.Equal(t, "m9", s.LastMessageID())
}

func TestSocketCBOREncoding(t *testing.T) {
	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL(), WithEncoding("cbor"))
	rec := record(s)

	send := func(conn *websocket.Conn, v any) {
		data, err := cbor.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))
	}

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	send(conn, welcomeFrame(30000))
	rec.waitFor(t, EventWelcome)

	send(conn, map[string]any{"op": 0, "t": "Ping", "s": "m2", "d": map[string]any{"value": "x"}})
	p := rec.waitFor(t, EventDispatch).Data.(*Packet)
	var payload struct {
		Value string `json:"value"`
	}
	require.NoError(t, p.D.Decode(&payload))
	assert.Equal(t, "x", payload.Value)
}

func TestSocketConnectTimeout(t *testing.T) {
	ts := newTestServer(t)
	mock := clock.NewMock()
	s := newTestSocket(t, ts.wsURL(), WithClock(mock))
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	ts.accept(t)

	mock.Add(300 * time.Second)
	err := rec.waitFor(t, EventError).Data.(error)
	assert.True(t, errors.Is(err, ErrConnectionTimeout))
	rec.waitFor(t, EventDisconnect)
	assert.Equal(t, StateDisconnected, s.State())
	assert.Equal(t, 0, s.Attempt())
}

func TestSocketConnectGuards(t *testing.T) {
	s, err := New(WithURL("ws://127.0.0.1:0"))
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, errors.Is(s.Connect(context.Background()), ErrInvalidToken))

	ts := newTestServer(t)
	s2 := newTestSocket(t, ts.wsURL())
	require.NoError(t, s2.Connect(context.Background()))
	ts.accept(t)
	assert.True(t, errors.Is(s2.Connect(context.Background()), ErrAlreadyConnected))

	s2.Close()
	assert.True(t, errors.Is(s2.Connect(context.Background()), ErrClosed))
}

// drain 取出已记录的事件，总线为同步模式
func (r *recorder) drain() []event.Event {
	var got []event.Event
	for {
		select {
		case e := <-r.ch:
			got = append(got, e)
		default:
			return got
		}
	}
}

func countEvents(events []event.Event, name string) int {
	n := 0
	for _, e := range events {
		if e.Name == name {
			n++
		}
	}
	return n
}

func TestSocketDisconnectTwice(t *testing.T) {
	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL())
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	require.NoError(t, conn.WriteJSON(welcomeFrame(30000)))
	rec.waitFor(t, EventWelcome)

	interval := s.ReconnectInterval()
	s.Disconnect(false, nil)
	s.Disconnect(false, nil)
	s.Disconnect(true, nil)

	assert.Equal(t, 1, countEvents(rec.drain(), EventDisconnect))
	assert.Equal(t, interval, s.ReconnectInterval())
	assert.Equal(t, StateDisconnected, s.State())
}

func TestSocketDisconnectCancelsScheduledReconnect(t *testing.T) {
	ts := newTestServer(t)
	mock := clock.NewMock()
	s := newTestSocket(t, ts.wsURL(), WithClock(mock), WithReconnect(true))
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	ts.accept(t)

	s.Disconnect(true, nil)
	grown := s.ReconnectInterval()

	// 取消已排队的重连，之后再调用不再有任何效果
	s.Disconnect(false, nil)
	s.Disconnect(false, nil)
	assert.Equal(t, 2, countEvents(rec.drain(), EventDisconnect))
	assert.Equal(t, grown, s.ReconnectInterval())

	mock.Add(time.Minute)
	assert.Equal(t, StateDisconnected, s.State())
	assert.Equal(t, 0, s.Attempt())
	assert.Empty(t, rec.drain())
}

func TestSocketCloseClassification(t *testing.T) {
	ts := newTestServer(t)

	s := newTestSocket(t, ts.wsURL())
	rec := record(s)
	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	closeWith(conn, 4000, "bad request")
	var gerr *errors.GatewayError
	require.True(t, errors.As(rec.waitFor(t, EventError).Data.(error), &gerr))
	assert.Equal(t, 4000, gerr.Code)
	assert.Equal(t, "bad request", gerr.Reason)

	s2 := newTestSocket(t, ts.wsURL())
	rec2 := record(s2)
	require.NoError(t, s2.Connect(context.Background()))
	conn2, _ := ts.accept(t)
	_ = conn2.UnderlyingConn().Close()
	for _, e := range rec2.until(t, EventDisconnect) {
		assert.NotEqual(t, EventError, e.Name)
	}
}

func TestSocketUnknownOpcode(t *testing.T) {
	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL())
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	require.NoError(t, conn.WriteJSON(map[string]any{"op": 8, "s": "m5"}))
	p := rec.waitFor(t, EventUnknownPacket).Data.(*Packet)
	assert.Equal(t, OpFailure, p.Op)
	assert.Equal(t, "m5", s.LastMessageID())
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "guilded")

	ts := newTestServer(t)
	s := newTestSocket(t, ts.wsURL(), WithMetrics(m))
	rec := record(s)

	require.NoError(t, s.Connect(context.Background()))
	conn, _ := ts.accept(t)
	require.NoError(t, conn.WriteJSON(welcomeFrame(30000)))
	rec.waitFor(t, EventWelcome)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.connections))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.connected))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.packets.WithLabelValues("welcome", "")))
}

func TestSplitFrame(t *testing.T) {
	chunk, ok := splitFrame([]byte{1, 2, 0x30, 0x30, 0x7d, 0x7d})
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2}, chunk)

	chunk, ok = splitFrame([]byte{1, 0x00, 0x00, 0xff, 0xff})
	assert.True(t, ok)
	assert.Len(t, chunk, 5)

	_, ok = splitFrame([]byte{1, 2, 3})
	assert.False(t, ok)
}
