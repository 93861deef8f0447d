package structures

import (
	"time"

	"github.com/tokmz/guilded/utils/pointer"
)

// ChatMessage 聊天消息
type ChatMessage struct {
	ID                 string
	Type               MessageType
	ServerID           string
	ChannelID          string
	Content            string
	Embeds             []Embed
	ReplyMessageIDs    []string
	IsPrivate          bool
	IsSilent           bool
	Mentions           *Mentions
	CreatedAt          time.Time
	CreatedBy          string
	CreatedByWebhookID string
	UpdatedAt          time.Time
	DeletedAt          time.Time

	client Client
}

// NewChatMessage 构建消息，extra 可携带 Client
func NewChatMessage(raw RawChatMessage, extra ...any) *ChatMessage {
	m := &ChatMessage{Type: MessageDefault, client: clientArg(extra)}
	m.Merge(raw)
	return m
}

func (m *ChatMessage) Key() string { return m.ID }

func (m *ChatMessage) Clone() *ChatMessage {
	c := *m
	return &c
}

// Merge 合并存在的字段
func (m *ChatMessage) Merge(raw RawChatMessage) {
	pointer.Assign(&m.ID, raw.ID)
	pointer.Assign(&m.Type, raw.Type)
	pointer.Assign(&m.ServerID, raw.ServerID)
	pointer.Assign(&m.ChannelID, raw.ChannelID)
	pointer.Assign(&m.Content, raw.Content)
	pointer.AssignSlice(&m.Embeds, raw.Embeds)
	pointer.AssignSlice(&m.ReplyMessageIDs, raw.ReplyMessageIDs)
	pointer.Assign(&m.IsPrivate, raw.IsPrivate)
	pointer.Assign(&m.IsSilent, raw.IsSilent)
	pointer.AssignPtr(&m.Mentions, raw.Mentions)
	pointer.Assign(&m.CreatedAt, raw.CreatedAt)
	pointer.Assign(&m.CreatedBy, raw.CreatedBy)
	pointer.Assign(&m.CreatedByWebhookID, raw.CreatedByWebhookID)
	pointer.Assign(&m.UpdatedAt, raw.UpdatedAt)
	pointer.Assign(&m.DeletedAt, raw.DeletedAt)
}

// IsSystem 是否为系统消息
func (m *ChatMessage) IsSystem() bool { return m.Type == MessageSystem }

// Deleted 是否已删除
func (m *ChatMessage) Deleted() bool { return !m.DeletedAt.IsZero() }

// Server 所属服务器（已缓存时）
func (m *ChatMessage) Server() (*Server, bool) {
	return lookupServer(m.client, m.ServerID)
}

// Channel 所属频道（已缓存时）
func (m *ChatMessage) Channel() (*Channel, bool) {
	return lookupChannel(m.client, m.ServerID, m.ChannelID)
}

// Member 发送者的成员信息（已缓存时）
func (m *ChatMessage) Member() (*ServerMember, bool) {
	server, ok := m.Server()
	if !ok {
		return nil, false
	}
	return server.Members().Get(m.CreatedBy)
}

// Author 发送者（已缓存时）
func (m *ChatMessage) Author() (*User, bool) {
	return lookupUser(m.client, m.CreatedBy)
}

// ReactionInfo 消息或论坛主题上的表情回应
type ReactionInfo struct {
	ServerID  string
	ChannelID string
	CreatedBy string
	Emote     RawEmote
	// MessageID 消息回应时非空
	MessageID string
	// TopicID 论坛主题或评论回应时非零
	TopicID int
	// CommentID 评论回应时非零
	CommentID int
}
