package gateway

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/pkg/logger"
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/pkg/tracing"
	"github.com/tokmz/guilded/pkg/ws"
)

// Client 分发器依赖的客户端能力
type Client interface {
	structures.Client

	Servers() *cache.TypedCollection[string, structures.RawServer, *structures.Server]
	GetServer(ctx context.Context, serverID string) (*structures.Server, error)
	GetServerChannel(ctx context.Context, channelID string) (*structures.Channel, error)
	GetForumTopic(ctx context.Context, channelID string, topicID int) (*structures.ForumTopic, error)
	GetCalendarEvent(ctx context.Context, channelID string, eventID int) (*structures.CalendarEvent, error)
	// Emit 发出领域事件
	Emit(name string, data any)
}

// Options 分发器选项
type Options struct {
	Logger logger.Logger
	// Store 补全请求的合并与失败缓存，为 nil 时自动创建
	Store *cache.Store
	// MissTTL 补全失败后在该时间内不再重试
	MissTTL time.Duration
	// DedupeCapacity 重放去重的容量，为 0 时关闭去重
	DedupeCapacity uint
}

// Option 选项函数
type Option func(*Options)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithStore 设置共享存储
func WithStore(s *cache.Store) Option {
	return func(o *Options) { o.Store = s }
}

// WithMissTTL 设置补全失败缓存时间
func WithMissTTL(d time.Duration) Option {
	return func(o *Options) { o.MissTTL = d }
}

// WithDedupeCapacity 设置重放去重容量
func WithDedupeCapacity(n uint) Option {
	return func(o *Options) { o.DedupeCapacity = n }
}

// Handler 网关事件分发器
// 同一连接的事件按到达顺序在调用方 goroutine 中处理；父实体补全在后台进行
type Handler struct {
	client Client
	store  *cache.Store
	log    logger.Logger
	dedupe *dedupe

	missTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 创建分发器
func New(client Client, opts ...Option) *Handler {
	o := &Options{
		MissTTL:        30 * time.Second,
		DedupeCapacity: 100000,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	if o.Store == nil {
		o.Store = cache.NewStore(o.MissTTL, time.Minute)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		client:  client,
		store:   o.Store,
		log:     o.Logger.Named("gateway"),
		missTTL: o.MissTTL,
		ctx:     ctx,
		cancel:  cancel,
	}
	if o.DedupeCapacity > 0 {
		h.dedupe = newDedupe(o.DedupeCapacity, o.Store)
	}
	return h
}

// Handles 是否处理该事件类型
func (h *Handler) Handles(eventType string) bool {
	_, ok := handlers[eventType]
	return ok
}

// HandleMessage 处理一个事件数据包
// 引用的服务器未缓存时先同步拉取；系统消息不分发
func (h *Handler) HandleMessage(ctx context.Context, eventType string, packet *ws.Packet) error {
	if packet == nil {
		return nil
	}
	if h.dedupe != nil && h.dedupe.seen(packet.S) {
		h.log.Debug("skipping replayed event", zap.String("type", eventType), zap.String("message_id", packet.S))
		return nil
	}

	fn, ok := handlers[eventType]
	if !ok {
		h.log.Debug("unhandled gateway event", zap.String("type", eventType))
		return nil
	}

	var env envelope
	if err := packet.D.Decode(&env); err != nil {
		return err
	}

	ctx, span := tracing.StartSpan(ctx, "gateway."+eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("guilded.event", eventType),
			attribute.String("guilded.server_id", env.ServerID),
		),
	)
	defer span.End()

	if env.ServerID != "" {
		if _, ok := h.client.LookupServer(env.ServerID); !ok {
			h.ensureServer(ctx, env.ServerID)
		}
	}
	if env.Message != nil && env.Message.Type == structures.MessageSystem {
		return nil
	}

	if err := fn(h, ctx, packet.D); err != nil {
		tracing.RecordError(span, err)
		return err
	}
	return nil
}

// Wait 等待进行中的补全完成
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Close 取消补全并等待退出
func (h *Handler) Close() {
	h.cancel()
	h.wg.Wait()
}

type handlerFunc func(h *Handler, ctx context.Context, d ws.Payload) error

// on 解码到事件对应的数据结构后调用 fn
func on[T any](fn func(h *Handler, ctx context.Context, p *T)) handlerFunc {
	return func(h *Handler, ctx context.Context, d ws.Payload) error {
		p := new(T)
		if err := d.Decode(p); err != nil {
			return err
		}
		fn(h, ctx, p)
		return nil
	}
}

var handlers = map[string]handlerFunc{
	BotServerMembershipCreated:       on(botServerMembershipCreate),
	BotServerMembershipDeleted:       on(botServerMembershipDelete),
	CalendarEventCreated:             on(calendarEvent(EventCalendarEventCreate, false)),
	CalendarEventUpdated:             on(calendarEvent(EventCalendarEventUpdate, false)),
	CalendarEventDeleted:             on(calendarEvent(EventCalendarEventDelete, true)),
	CalendarEventRsvpUpdated:         on(calendarEventRSVP(EventCalendarEventRSVPUpdate, false)),
	CalendarEventRsvpDeleted:         on(calendarEventRSVP(EventCalendarEventRSVPDelete, true)),
	CalendarEventRsvpManyUpdated:     on(calendarEventRSVPMany),
	ChannelMessageReactionCreated:    on(messageReaction(EventChannelMessageReactionCreate)),
	ChannelMessageReactionDeleted:    on(messageReaction(EventChannelMessageReactionDelete)),
	ChatMessageCreated:               on(chatMessage(EventChatMessageCreate, false)),
	ChatMessageUpdated:               on(chatMessage(EventChatMessageUpdate, false)),
	ChatMessageDeleted:               on(chatMessage(EventChatMessageDelete, true)),
	DocCreated:                       on(doc(EventDocCreate, false)),
	DocUpdated:                       on(doc(EventDocUpdate, false)),
	DocDeleted:                       on(doc(EventDocDelete, true)),
	ForumTopicCreated:                on(forumTopic(EventForumTopicCreate, false)),
	ForumTopicUpdated:                on(forumTopic(EventForumTopicUpdate, false)),
	ForumTopicDeleted:                on(forumTopic(EventForumTopicDelete, true)),
	ForumTopicPinned:                 on(forumTopic(EventForumTopicPin, false)),
	ForumTopicUnpinned:               on(forumTopic(EventForumTopicUnpin, false)),
	ForumTopicLocked:                 on(forumTopic(EventForumTopicLock, false)),
	ForumTopicUnlocked:               on(forumTopic(EventForumTopicUnlock, false)),
	ForumTopicReactionCreated:        on(topicReaction(EventForumTopicReactionCreate)),
	ForumTopicReactionDeleted:        on(topicReaction(EventForumTopicReactionDelete)),
	ForumTopicCommentCreated:         on(forumTopicComment(EventForumTopicCommentCreate, false)),
	ForumTopicCommentUpdated:         on(forumTopicComment(EventForumTopicCommentUpdate, false)),
	ForumTopicCommentDeleted:         on(forumTopicComment(EventForumTopicCommentDelete, true)),
	ForumTopicCommentReactionCreated: on(topicReaction(EventForumTopicCommentReactionCreate)),
	ForumTopicCommentReactionDeleted: on(topicReaction(EventForumTopicCommentReactionDelete)),
	ListItemCreated:                  on(listItem(EventListItemCreate)),
	ListItemUpdated:                  on(listItem(EventListItemUpdate)),
	ListItemDeleted:                  on(listItem(EventListItemDelete)),
	ListItemCompleted:                on(listItem(EventListItemComplete)),
	ListItemUncompleted:              on(listItem(EventListItemUncomplete)),
	ServerChannelCreated:             on(serverChannel(EventServerChannelCreate, false)),
	ServerChannelUpdated:             on(serverChannel(EventServerChannelUpdate, false)),
	ServerChannelDeleted:             on(serverChannel(EventServerChannelDelete, true)),
	ServerMemberJoined:               on(serverMemberJoin),
	ServerMemberRemoved:              on(serverMemberRemove),
	ServerMemberUpdated:              on(serverMemberUpdate),
	ServerMemberBanned:               on(serverMemberBan(EventServerMemberBan)),
	ServerMemberUnbanned:             on(serverMemberBan(EventServerMemberUnban)),
	ServerRolesUpdated:               on(serverRolesUpdate),
	ServerWebhookCreated:             on(serverWebhook(EventServerWebhookCreate)),
	ServerWebhookUpdated:             on(serverWebhook(EventServerWebhookUpdate)),
}
