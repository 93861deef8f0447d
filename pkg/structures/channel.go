package structures

import (
	"time"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/utils/pointer"
)

// Channel 服务器频道
// 按类型持有子集合：聊天类频道有消息，论坛有主题，文档频道有文档，日程频道有日程
type Channel struct {
	ID         string
	Type       ChannelType
	Name       string
	Topic      string
	CreatedAt  time.Time
	CreatedBy  string
	UpdatedAt  time.Time
	ServerID   string
	ParentID   string
	CategoryID int
	GroupID    string
	IsPublic   bool
	ArchivedBy string
	ArchivedAt time.Time

	client   Client
	messages *cache.TypedCollection[string, RawChatMessage, *ChatMessage]
	topics   *cache.TypedCollection[int, RawForumTopic, *ForumTopic]
	docs     *cache.TypedCollection[int, RawDoc, *Doc]
	events   *cache.TypedCollection[int, RawCalendarEvent, *CalendarEvent]
}

// NewChannel 构建频道，extra 可携带 Client
func NewChannel(raw RawServerChannel, extra ...any) *Channel {
	ch := &Channel{client: clientArg(extra)}
	ch.Merge(raw)
	return ch
}

// rebuild 按当前类型重建子集合，原有缓存丢弃
func (ch *Channel) rebuild() {
	ch.messages, ch.topics, ch.docs, ch.events = nil, nil, nil, nil

	limits := limitsOf(ch.client)
	switch {
	case ch.Type.Textable():
		ch.messages = cache.NewTypedCollection[string, RawChatMessage, *ChatMessage](NewChatMessage, limits.Messages, ch.client)
	case ch.Type == ChannelForums:
		ch.topics = cache.NewTypedCollection[int, RawForumTopic, *ForumTopic](NewForumTopic, limits.Topics, ch.client)
	case ch.Type == ChannelDocs:
		ch.docs = cache.NewTypedCollection[int, RawDoc, *Doc](NewDoc, limits.Docs, ch.client)
	case ch.Type == ChannelCalendar:
		ch.events = cache.NewTypedCollection[int, RawCalendarEvent, *CalendarEvent](NewCalendarEvent, limits.ScheduledEvents, ch.client)
	}
}

func (ch *Channel) Key() string { return ch.ID }

// Clone 浅拷贝，子集合与原实例共享
func (ch *Channel) Clone() *Channel {
	c := *ch
	return &c
}

// Merge 合并存在的字段，类型变化时重建子集合
func (ch *Channel) Merge(raw RawServerChannel) {
	prev := ch.Type
	pointer.Assign(&ch.ID, raw.ID)
	pointer.Assign(&ch.Type, raw.Type)
	pointer.Assign(&ch.Name, raw.Name)
	pointer.Assign(&ch.Topic, raw.Topic)
	pointer.Assign(&ch.CreatedAt, raw.CreatedAt)
	pointer.Assign(&ch.CreatedBy, raw.CreatedBy)
	pointer.Assign(&ch.UpdatedAt, raw.UpdatedAt)
	pointer.Assign(&ch.ServerID, raw.ServerID)
	pointer.Assign(&ch.ParentID, raw.ParentID)
	pointer.Assign(&ch.CategoryID, raw.CategoryID)
	pointer.Assign(&ch.GroupID, raw.GroupID)
	pointer.Assign(&ch.IsPublic, raw.IsPublic)
	pointer.Assign(&ch.ArchivedBy, raw.ArchivedBy)
	pointer.Assign(&ch.ArchivedAt, raw.ArchivedAt)

	if ch.Type != prev {
		ch.rebuild()
	}
}

// Messages 消息集合，非聊天类频道为 nil
func (ch *Channel) Messages() *cache.TypedCollection[string, RawChatMessage, *ChatMessage] {
	return ch.messages
}

// Topics 论坛主题集合，非论坛频道为 nil
func (ch *Channel) Topics() *cache.TypedCollection[int, RawForumTopic, *ForumTopic] {
	return ch.topics
}

// Docs 文档集合，非文档频道为 nil
func (ch *Channel) Docs() *cache.TypedCollection[int, RawDoc, *Doc] {
	return ch.docs
}

// CalendarEvents 日程集合，非日程频道为 nil
func (ch *Channel) CalendarEvents() *cache.TypedCollection[int, RawCalendarEvent, *CalendarEvent] {
	return ch.events
}

// Server 所属服务器（已缓存时）
func (ch *Channel) Server() (*Server, bool) {
	return lookupServer(ch.client, ch.ServerID)
}

// Parent 父频道（已缓存时）
func (ch *Channel) Parent() (*Channel, bool) {
	if ch.ParentID == "" {
		return nil, false
	}
	return lookupChannel(ch.client, ch.ServerID, ch.ParentID)
}

// Archived 是否已归档
func (ch *Channel) Archived() bool { return !ch.ArchivedAt.IsZero() }
