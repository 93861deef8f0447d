package guilded

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/guilded/pkg/config"
	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/event"
	"github.com/tokmz/guilded/pkg/gateway"
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/utils/pointer"
)

// api 模拟 REST 接口，记录每个路径的请求次数
type api struct {
	*httptest.Server
	hits   map[string]*atomic.Int32
	routes map[string]func(w http.ResponseWriter, r *http.Request)
}

func newAPI(t *testing.T) *api {
	a := &api{
		hits:   make(map[string]*atomic.Int32),
		routes: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}
	a.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		fn, ok := a.routes[key]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NotFound","message":"not found"}`))
			return
		}
		a.hits[key].Add(1)
		fn(w, r)
	}))
	t.Cleanup(a.Close)
	return a
}

func (a *api) handle(method, path string, fn func(w http.ResponseWriter, r *http.Request)) {
	key := method + " " + path
	a.hits[key] = new(atomic.Int32)
	a.routes[key] = fn
}

func (a *api) json(method, path string, status int, body string) {
	a.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (a *api) count(method, path string) int {
	if c, ok := a.hits[method+" "+path]; ok {
		return int(c.Load())
	}
	return 0
}

func newTestClient(t *testing.T, a *api, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithReconnect(false)}
	if a != nil {
		base = append(base, WithRESTOptions(RESTOptions{BaseURL: a.URL, RequestTimeout: 2 * time.Second}))
	}
	c, err := New("token", append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("")
	assert.True(t, errors.Is(err, ErrNoToken))
	assert.Equal(t, "No token provided", err.Error())
}

func TestNewFromSettings(t *testing.T) {
	cfg := config.New(config.WithDefaults(map[string]any{"token": "abc"}))
	require.NoError(t, cfg.Load())
	s, err := cfg.Settings()
	require.NoError(t, err)

	c, err := NewFromSettings(s, WithReconnect(false))
	require.NoError(t, err)
	defer c.Close()

	o := c.Options()
	assert.Equal(t, "abc", c.Token())
	assert.Equal(t, structures.DefaultLimits(), o.CollectionLimits)
	assert.Equal(t, 1, o.ReconnectAttemptLimit)
	assert.True(t, o.ReplayMissedEvents)
	assert.False(t, o.Reconnect)
	assert.NotNil(t, c.REST())
}

func TestClient_RESTDisabled(t *testing.T) {
	c := newTestClient(t, nil, WithREST(false))
	assert.Nil(t, c.REST())

	_, err := c.GetServer(context.Background(), "s1")
	assert.True(t, errors.Is(err, ErrRESTDisabled))
}

func TestClient_Validation(t *testing.T) {
	a := newAPI(t)
	c := newTestClient(t, a)
	ctx := context.Background()

	_, err := c.GetServerChannel(ctx, "")
	assert.True(t, errors.Is(err, ErrMissingID))
	assert.Equal(t, "No channel ID provided", err.Error())

	err = c.AddServerMemberRole(ctx, "s1", "u1", 0)
	assert.Equal(t, "No role ID provided", err.Error())

	_, err = c.CreateChannelMessage(ctx, "c1", MessageCreateOptions{})
	assert.True(t, errors.Is(err, ErrMissingOptions))

	err = c.AddForumTopicCommentReactionEmote(ctx, "c1", 1, 0, 5)
	assert.Equal(t, "No comment ID provided", err.Error())
}

func TestClient_GetServerChannel_MergesIntoServer(t *testing.T) {
	a := newAPI(t)
	a.json(http.MethodGet, "/servers/s1", 200, `{"server":{"id":"s1","name":"Guild","ownerId":"u1"}}`)
	a.json(http.MethodGet, "/channels/c1", 200, `{"channel":{"id":"c1","serverId":"s1","type":"chat","name":"general"}}`)
	c := newTestClient(t, a)
	ctx := context.Background()

	server, err := c.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Guild", server.Name)

	ch, err := c.GetServerChannel(ctx, "c1")
	require.NoError(t, err)
	cached, ok := server.Channels().Get("c1")
	require.True(t, ok)
	assert.Same(t, cached, ch)
	assert.NotNil(t, ch.Messages())

	again, err := c.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, server, again)
}

func TestClient_GetChannelMessages_Query(t *testing.T) {
	a := newAPI(t)
	var query atomic.Value
	a.handle(http.MethodGet, "/channels/c1/messages", func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"m1","channelId":"c1","content":"hi"},{"id":"m2","channelId":"c1","content":"yo"}]}`))
	})
	c := newTestClient(t, a)

	msgs, err := c.GetChannelMessages(context.Background(), "c1", &MessagesFilter{Limit: 2, IncludePrivate: true})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "yo", msgs[1].Content)

	q := query.Load().(url.Values)
	assert.Equal(t, []string{"2"}, q["limit"])
	assert.Equal(t, []string{"true"}, q["includePrivate"])
}

func TestClient_EditServerMember_Nickname(t *testing.T) {
	a := newAPI(t)
	var body atomic.Value
	a.handle(http.MethodPut, "/servers/s1/members/u1/nickname", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		body.Store(m)
		w.WriteHeader(http.StatusNoContent)
	})
	a.handle(http.MethodDelete, "/servers/s1/members/u1/nickname", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, a)
	ctx := context.Background()

	require.NoError(t, c.EditServerMember(ctx, "s1", "u1", ServerMemberEditOptions{Nickname: pointer.Of("nick")}))
	assert.Equal(t, "nick", body.Load().(map[string]any)["nickname"])

	require.NoError(t, c.EditServerMember(ctx, "s1", "u1", ServerMemberEditOptions{}))
	assert.Equal(t, 1, a.count(http.MethodDelete, "/servers/s1/members/u1/nickname"))
}

func TestClient_AwardServerMember(t *testing.T) {
	a := newAPI(t)
	a.json(http.MethodPost, "/servers/s1/members/u1/xp", 200, `{"total":150}`)
	c := newTestClient(t, a)

	total, err := c.AwardServerMember(context.Background(), "s1", "u1", 50)
	require.NoError(t, err)
	assert.Equal(t, 150, total)
}

func TestClient_RESTErrorIsStructured(t *testing.T) {
	a := newAPI(t)
	a.json(http.MethodGet, "/channels/c1/docs/3", 403, `{"code":"Forbidden","message":"Missing permission"}`)
	c := newTestClient(t, a)

	_, err := c.GetDoc(context.Background(), "c1", 3)
	var rerr *errors.RESTError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 403, rerr.Status)
	assert.Contains(t, err.Error(), "Missing permission on GET /channels/c1/docs/3")
}

func TestClient_UpdateMember(t *testing.T) {
	c := newTestClient(t, nil, WithREST(false))
	server := c.UpdateServer(structures.RawServer{ID: pointer.Of("s1")})

	m := c.UpdateMember("s1", "u1", structures.RawServerMember{Nickname: pointer.Of("a")})
	assert.Equal(t, "u1", m.ID)
	assert.Equal(t, "s1", m.ServerID)
	cached, ok := server.Members().Get("u1")
	require.True(t, ok)
	assert.Same(t, m, cached)

	transient := c.UpdateMember("missing", "u2", structures.RawServerMember{})
	assert.Equal(t, "missing", transient.ServerID)
	assert.Equal(t, 1, server.Members().Len())
}

func TestClient_UpdateServer_WithoutIDIsTransient(t *testing.T) {
	c := newTestClient(t, nil, WithREST(false))
	s := c.UpdateServer(structures.RawServer{Name: pointer.Of("x")})
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, 0, c.Servers().Len())
}

// gatewayServer 模拟网关：接受连接后依次发送给定帧
type gatewayServer struct {
	*httptest.Server
	conns chan *websocket.Conn
}

func newGatewayServer(t *testing.T) *gatewayServer {
	g := &gatewayServer{conns: make(chan *websocket.Conn, 4)}
	up := websocket.Upgrader{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.conns <- conn
	}))
	t.Cleanup(g.Close)
	return g
}

func (g *gatewayServer) url() string {
	return "ws" + strings.TrimPrefix(g.URL, "http")
}

func (g *gatewayServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-g.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no gateway connection accepted")
		return nil
	}
}

func send(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	data, err := json.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func welcome() map[string]any {
	return map[string]any{"op": 1, "d": map[string]any{
		"heartbeatIntervalMs": 22500,
		"lastMessageId":       "",
		"botId":               "b1",
		"user":                map[string]any{"id": "bot", "botId": "b1", "name": "Bot", "createdBy": "owner"},
	}}
}

func chatMessage(id, text string) map[string]any {
	return map[string]any{"op": 0, "t": gateway.ChatMessageCreated, "s": "seq-" + id, "d": map[string]any{
		"serverId": "s1",
		"message":  map[string]any{"id": id, "channelId": "c1", "serverId": "s1", "content": text, "type": "default"},
	}}
}

type collector struct {
	ch chan event.Event
}

func collect(c *Client) *collector {
	col := &collector{ch: make(chan event.Event, 64)}
	c.OnAny(func(e event.Event) {
		select {
		case col.ch <- e:
		default:
		}
	})
	return col
}

func (col *collector) waitFor(t *testing.T, name string) event.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-col.ch:
			if e.Name == name {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", name)
			return event.Event{}
		}
	}
}

func TestClient_Connect_ReadyAndUptime(t *testing.T) {
	g := newGatewayServer(t)
	c := newTestClient(t, nil, WithREST(false), WithGatewayURL(g.url()))
	events := collect(c)

	require.NoError(t, c.Connect(context.Background()))
	conn := g.accept(t)
	assert.Zero(t, c.Uptime())

	send(t, conn, welcome())
	e := events.waitFor(t, EventReady)
	user := e.Data.(*structures.ClientUser)
	assert.Equal(t, "bot", user.ID)
	assert.Equal(t, "b1", user.BotID)
	assert.Equal(t, "bot", c.SelfID())
	assert.False(t, c.StartTime().IsZero())

	c.Disconnect()
	events.waitFor(t, EventDisconnect)
	assert.True(t, c.StartTime().IsZero())
	assert.Zero(t, c.Uptime())
}

func TestClient_GatewayHydratesChannelOnce(t *testing.T) {
	a := newAPI(t)
	release := make(chan struct{})
	a.json(http.MethodGet, "/servers/s1", 200, `{"server":{"id":"s1","name":"Guild"}}`)
	a.handle(http.MethodGet, "/channels/c1", func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"channel":{"id":"c1","serverId":"s1","type":"chat","name":"general"}}`))
	})
	g := newGatewayServer(t)
	c := newTestClient(t, a, WithGatewayURL(g.url()))
	events := collect(c)

	require.NoError(t, c.Connect(context.Background()))
	conn := g.accept(t)
	send(t, conn, welcome())
	events.waitFor(t, EventReady)

	send(t, conn, chatMessage("m1", "first"))
	first := events.waitFor(t, gateway.EventChatMessageCreate).Data.(*structures.ChatMessage)
	assert.Equal(t, "first", first.Content)

	send(t, conn, chatMessage("m2", "second"))
	events.waitFor(t, gateway.EventChatMessageCreate)
	close(release)

	server, ok := c.LookupServer("s1")
	require.True(t, ok)
	assert.Eventually(t, func() bool { return server.Channels().Has("c1") }, 2*time.Second, 10*time.Millisecond)
	c.Gateway().Wait()
	assert.Equal(t, 1, a.count(http.MethodGet, "/servers/s1"))
	assert.Equal(t, 1, a.count(http.MethodGet, "/channels/c1"))

	send(t, conn, chatMessage("m3", "third"))
	third := events.waitFor(t, gateway.EventChatMessageCreate).Data.(*structures.ChatMessage)
	ch, _ := server.Channels().Get("c1")
	cached, ok := ch.Messages().Get("m3")
	require.True(t, ok)
	assert.NotSame(t, cached, third, "events carry snapshots")
	assert.Equal(t, cached.Content, third.Content)
	assert.Equal(t, "s1", third.ServerID)
	assert.Equal(t, 1, a.count(http.MethodGet, "/channels/c1"))
}

func TestClient_GatewaySuppressesSystemMessages(t *testing.T) {
	a := newAPI(t)
	a.json(http.MethodGet, "/servers/s1", 200, `{"server":{"id":"s1"}}`)
	a.json(http.MethodGet, "/channels/c1", 200, `{"channel":{"id":"c1","serverId":"s1","type":"chat"}}`)
	g := newGatewayServer(t)
	c := newTestClient(t, a, WithGatewayURL(g.url()))
	events := collect(c)

	require.NoError(t, c.Connect(context.Background()))
	conn := g.accept(t)
	send(t, conn, welcome())
	events.waitFor(t, EventReady)

	system := chatMessage("m0", "joined")
	system["d"].(map[string]any)["message"].(map[string]any)["type"] = "system"
	send(t, conn, system)
	send(t, conn, chatMessage("m1", "hello"))

	msg := events.waitFor(t, gateway.EventChatMessageCreate).Data.(*structures.ChatMessage)
	assert.Equal(t, "m1", msg.ID)
}

func TestClient_StatsAndHealth(t *testing.T) {
	c := newTestClient(t, nil, WithREST(false))
	c.UpdateServer(structures.RawServer{ID: pointer.Of("s1")})

	assert.True(t, errors.Is(c.Healthy(), ErrNotConnected))
	s := c.Stats()
	assert.Equal(t, "disconnected", s.GatewayState)
	assert.Equal(t, 1, s.Servers)
	assert.Zero(t, s.Uptime)
	assert.False(t, s.GlobalBlocked)
}

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "/channels/c1/topics/4/comments/9/emotes/90002", EndpointForumTopicCommentEmote("c1", 4, 9, 90002))
	assert.Equal(t, "/channels/c1/events/3/rsvps/u1", EndpointChannelEventRSVP("c1", 3, "u1"))
	assert.Equal(t, "/servers/s1/members/u1/social-links/youtube", EndpointServerMemberSocialLink("s1", "u1", "youtube"))
	assert.Equal(t, "/groups/g1/members/u1", EndpointGroupMember("g1", "u1"))
	assert.Equal(t, "/channels/c1/items/i1/complete", EndpointListItemComplete("c1", "i1"))
}
