package guilded

import (
	"strconv"
	"time"

	"github.com/tokmz/guilded/pkg/structures"
)

// MessageCreateOptions 发送消息参数
type MessageCreateOptions struct {
	Content         string             `json:"content,omitempty"`
	Embeds          []structures.Embed `json:"embeds,omitempty"`
	IsPrivate       bool               `json:"isPrivate,omitempty"`
	IsSilent        bool               `json:"isSilent,omitempty"`
	ReplyMessageIDs []string           `json:"replyMessageIds,omitempty"`
}

// MessageEditOptions 编辑消息参数
type MessageEditOptions struct {
	Content string             `json:"content,omitempty"`
	Embeds  []structures.Embed `json:"embeds,omitempty"`
}

// MessagesFilter 消息列表过滤
type MessagesFilter struct {
	Before         time.Time
	After          time.Time
	Limit          int
	IncludePrivate bool
}

func (f *MessagesFilter) params() map[string]string {
	p := make(map[string]string)
	if f == nil {
		return p
	}
	setTime(p, "before", f.Before)
	setTime(p, "after", f.After)
	setInt(p, "limit", f.Limit)
	if f.IncludePrivate {
		p["includePrivate"] = "true"
	}
	return p
}

// PageFilter 按时间向前翻页的过滤条件（文档、论坛主题）
type PageFilter struct {
	Before time.Time
	Limit  int
}

func (f *PageFilter) params() map[string]string {
	p := make(map[string]string)
	if f == nil {
		return p
	}
	setTime(p, "before", f.Before)
	setInt(p, "limit", f.Limit)
	return p
}

// CalendarEventsFilter 日程列表过滤
type CalendarEventsFilter struct {
	Before time.Time
	After  time.Time
	Limit  int
}

func (f *CalendarEventsFilter) params() map[string]string {
	p := make(map[string]string)
	if f == nil {
		return p
	}
	setTime(p, "before", f.Before)
	setTime(p, "after", f.After)
	setInt(p, "limit", f.Limit)
	return p
}

// DocOptions 文档参数
type DocOptions struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ForumTopicOptions 论坛主题参数
type ForumTopicOptions struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ForumTopicCommentOptions 主题评论参数
type ForumTopicCommentOptions struct {
	Content string `json:"content"`
}

// ListItemNoteOptions 列表项备注
type ListItemNoteOptions struct {
	Content string `json:"content"`
}

// ListItemOptions 列表项参数
type ListItemOptions struct {
	Message string               `json:"message"`
	Note    *ListItemNoteOptions `json:"note,omitempty"`
}

// CalendarEventOptions 日程参数，编辑时只发送非空字段
type CalendarEventOptions struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	URL         string     `json:"url,omitempty"`
	Color       *int       `json:"color,omitempty"`
	Duration    *int       `json:"duration,omitempty"` // 分钟
	RSVPLimit   *int       `json:"rsvpLimit,omitempty"`
	IsPrivate   *bool      `json:"isPrivate,omitempty"`
}

// CalendarEventRSVPEditOptions 回复参数
type CalendarEventRSVPEditOptions struct {
	Status structures.RSVPStatus `json:"status"`
}

// ServerChannelCreateOptions 创建频道参数
type ServerChannelCreateOptions struct {
	Name       string                 `json:"name"`
	Type       structures.ChannelType `json:"type"`
	Topic      string                 `json:"topic,omitempty"`
	IsPublic   bool                   `json:"isPublic,omitempty"`
	ServerID   string                 `json:"serverId,omitempty"`
	GroupID    string                 `json:"groupId,omitempty"`
	CategoryID int                    `json:"categoryId,omitempty"`
}

// ServerChannelEditOptions 编辑频道参数
type ServerChannelEditOptions struct {
	Name     *string `json:"name,omitempty"`
	Topic    *string `json:"topic,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

// ServerMemberEditOptions 编辑成员参数，Nickname 为 nil 时清除昵称
type ServerMemberEditOptions struct {
	Nickname *string `json:"nickname"`
}

// WebhookOptions webhook 参数
type WebhookOptions struct {
	Name      string `json:"name"`
	ChannelID string `json:"channelId,omitempty"`
}

// WebhookFilter webhook 列表过滤
type WebhookFilter struct {
	ChannelID string
}

func (f *WebhookFilter) params() map[string]string {
	p := make(map[string]string)
	if f != nil && f.ChannelID != "" {
		p["channelId"] = f.ChannelID
	}
	return p
}

// SocialLink 成员社交账号
type SocialLink struct {
	Handle    string `json:"handle"`
	ServiceID string `json:"serviceId"`
	Type      string `json:"type"`
}

func setTime(p map[string]string, key string, t time.Time) {
	if !t.IsZero() {
		p[key] = t.UTC().Format(time.RFC3339Nano)
	}
}

func setInt(p map[string]string, key string, n int) {
	if n > 0 {
		p[key] = strconv.Itoa(n)
	}
}
