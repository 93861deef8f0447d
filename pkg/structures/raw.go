package structures

import "time"

// 原始数据的指针字段为 nil 表示本次数据中不存在该字段，合并时保持原值

// ChannelType 频道类型
type ChannelType string

const (
	ChannelAnnouncement ChannelType = "announcement"
	ChannelCalendar     ChannelType = "calendar"
	ChannelChat         ChannelType = "chat"
	ChannelDocs         ChannelType = "docs"
	ChannelForums       ChannelType = "forums"
	ChannelList         ChannelType = "list"
	ChannelMedia        ChannelType = "media"
	ChannelScheduling   ChannelType = "scheduling"
	ChannelStream       ChannelType = "stream"
	ChannelVoice        ChannelType = "voice"
)

// Textable 是否可以收发聊天消息
func (t ChannelType) Textable() bool {
	switch t {
	case ChannelChat, ChannelVoice, ChannelStream, ChannelAnnouncement:
		return true
	}
	return false
}

// MessageType 消息类型
type MessageType string

const (
	MessageDefault MessageType = "default"
	MessageSystem  MessageType = "system"
)

// RSVPStatus 日程回复状态
type RSVPStatus string

const (
	RSVPGoing        RSVPStatus = "going"
	RSVPMaybe        RSVPStatus = "maybe"
	RSVPDeclined     RSVPStatus = "declined"
	RSVPInvited      RSVPStatus = "invited"
	RSVPWaitlisted   RSVPStatus = "waitlisted"
	RSVPNotResponded RSVPStatus = "not responded"
)

// IDRef 提及中的 id 引用
type IDRef[T any] struct {
	ID T `json:"id"`
}

// Mentions 内容中的提及
type Mentions struct {
	Users    []IDRef[string] `json:"users,omitempty"`
	Channels []IDRef[string] `json:"channels,omitempty"`
	Roles    []IDRef[int]    `json:"roles,omitempty"`
	Everyone bool            `json:"everyone,omitempty"`
	Here     bool            `json:"here,omitempty"`
}

// Embed 消息嵌入内容
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedFooter struct {
	IconURL string `json:"icon_url,omitempty"`
	Text    string `json:"text,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
	Inline bool   `json:"inline,omitempty"`
}

// RawEmote 表情
type RawEmote struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RawServer 服务器
type RawServer struct {
	ID               *string    `json:"id,omitempty"`
	OwnerID          *string    `json:"ownerId,omitempty"`
	Type             *string    `json:"type,omitempty"`
	Name             *string    `json:"name,omitempty"`
	URL              *string    `json:"url,omitempty"`
	About            *string    `json:"about,omitempty"`
	Avatar           *string    `json:"avatar,omitempty"`
	Banner           *string    `json:"banner,omitempty"`
	Timezone         *string    `json:"timezone,omitempty"`
	IsVerified       *bool      `json:"isVerified,omitempty"`
	DefaultChannelID *string    `json:"defaultChannelId,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

func (r RawServer) RawKey() (string, bool) { return strKey(r.ID) }

// RawServerChannel 服务器频道
type RawServerChannel struct {
	ID         *string      `json:"id,omitempty"`
	Type       *ChannelType `json:"type,omitempty"`
	Name       *string      `json:"name,omitempty"`
	Topic      *string      `json:"topic,omitempty"`
	CreatedAt  *time.Time   `json:"createdAt,omitempty"`
	CreatedBy  *string      `json:"createdBy,omitempty"`
	UpdatedAt  *time.Time   `json:"updatedAt,omitempty"`
	ServerID   *string      `json:"serverId,omitempty"`
	ParentID   *string      `json:"parentId,omitempty"`
	CategoryID *int         `json:"categoryId,omitempty"`
	GroupID    *string      `json:"groupId,omitempty"`
	IsPublic   *bool        `json:"isPublic,omitempty"`
	ArchivedBy *string      `json:"archivedBy,omitempty"`
	ArchivedAt *time.Time   `json:"archivedAt,omitempty"`
}

func (r RawServerChannel) RawKey() (string, bool) { return strKey(r.ID) }

// RawUser 用户
type RawUser struct {
	ID        *string    `json:"id,omitempty"`
	Type      *string    `json:"type,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Avatar    *string    `json:"avatar,omitempty"`
	Banner    *string    `json:"banner,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (r RawUser) RawKey() (string, bool) { return strKey(r.ID) }

// RawClientUser 欢迎包中的机器人用户
type RawClientUser struct {
	ID        string     `json:"id"`
	BotID     string     `json:"botId"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	CreatedBy string     `json:"createdBy"`
}

// RawServerMember 服务器成员，以用户 id 为键
type RawServerMember struct {
	User     *RawUser   `json:"user,omitempty"`
	RoleIDs  []int      `json:"roleIds,omitempty"`
	Nickname *string    `json:"nickname,omitempty"`
	JoinedAt *time.Time `json:"joinedAt,omitempty"`
	IsOwner  *bool      `json:"isOwner,omitempty"`
}

func (r RawServerMember) RawKey() (string, bool) {
	if r.User == nil {
		return "", false
	}
	return strKey(r.User.ID)
}

// RawServerMemberBan 服务器封禁
type RawServerMemberBan struct {
	User      *RawUser   `json:"user,omitempty"`
	Reason    *string    `json:"reason,omitempty"`
	CreatedBy *string    `json:"createdBy,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (r RawServerMemberBan) RawKey() (string, bool) {
	if r.User == nil {
		return "", false
	}
	return strKey(r.User.ID)
}

// RawChatMessage 聊天消息
type RawChatMessage struct {
	ID                 *string      `json:"id,omitempty"`
	Type               *MessageType `json:"type,omitempty"`
	ServerID           *string      `json:"serverId,omitempty"`
	ChannelID          *string      `json:"channelId,omitempty"`
	Content            *string      `json:"content,omitempty"`
	Embeds             []Embed      `json:"embeds,omitempty"`
	ReplyMessageIDs    []string     `json:"replyMessageIds,omitempty"`
	IsPrivate          *bool        `json:"isPrivate,omitempty"`
	IsSilent           *bool        `json:"isSilent,omitempty"`
	Mentions           *Mentions    `json:"mentions,omitempty"`
	CreatedAt          *time.Time   `json:"createdAt,omitempty"`
	CreatedBy          *string      `json:"createdBy,omitempty"`
	CreatedByWebhookID *string      `json:"createdByWebhookId,omitempty"`
	UpdatedAt          *time.Time   `json:"updatedAt,omitempty"`
	DeletedAt          *time.Time   `json:"deletedAt,omitempty"`
}

func (r RawChatMessage) RawKey() (string, bool) { return strKey(r.ID) }

// RawForumTopic 论坛主题
type RawForumTopic struct {
	ID                 *int       `json:"id,omitempty"`
	ServerID           *string    `json:"serverId,omitempty"`
	ChannelID          *string    `json:"channelId,omitempty"`
	Title              *string    `json:"title,omitempty"`
	Content            *string    `json:"content,omitempty"`
	Mentions           *Mentions  `json:"mentions,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	CreatedBy          *string    `json:"createdBy,omitempty"`
	CreatedByWebhookID *string    `json:"createdByWebhookId,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	BumpedAt           *time.Time `json:"bumpedAt,omitempty"`
	IsPinned           *bool      `json:"isPinned,omitempty"`
	IsLocked           *bool      `json:"isLocked,omitempty"`
}

func (r RawForumTopic) RawKey() (int, bool) { return intKey(r.ID) }

// RawForumTopicComment 论坛主题评论
type RawForumTopicComment struct {
	ID           *int       `json:"id,omitempty"`
	ForumTopicID *int       `json:"forumTopicId,omitempty"`
	ChannelID    *string    `json:"channelId,omitempty"`
	Content      *string    `json:"content,omitempty"`
	Mentions     *Mentions  `json:"mentions,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	CreatedBy    *string    `json:"createdBy,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func (r RawForumTopicComment) RawKey() (int, bool) { return intKey(r.ID) }

// RawDoc 文档
type RawDoc struct {
	ID        *int       `json:"id,omitempty"`
	ServerID  *string    `json:"serverId,omitempty"`
	ChannelID *string    `json:"channelId,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	Mentions  *Mentions  `json:"mentions,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	CreatedBy *string    `json:"createdBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy *string    `json:"updatedBy,omitempty"`
}

func (r RawDoc) RawKey() (int, bool) { return intKey(r.ID) }

// Cancellation 日程取消信息
type Cancellation struct {
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// RawCalendarEvent 日程
type RawCalendarEvent struct {
	ID           *int          `json:"id,omitempty"`
	ServerID     *string       `json:"serverId,omitempty"`
	ChannelID    *string       `json:"channelId,omitempty"`
	Name         *string       `json:"name,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Location     *string       `json:"location,omitempty"`
	URL          *string       `json:"url,omitempty"`
	Color        *int          `json:"color,omitempty"`
	RSVPLimit    *int          `json:"rsvpLimit,omitempty"`
	StartsAt     *time.Time    `json:"startsAt,omitempty"`
	Duration     *int          `json:"duration,omitempty"`
	IsPrivate    *bool         `json:"isPrivate,omitempty"`
	Mentions     *Mentions     `json:"mentions,omitempty"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	CreatedBy    *string       `json:"createdBy,omitempty"`
	Cancellation *Cancellation `json:"cancellation,omitempty"`
}

func (r RawCalendarEvent) RawKey() (int, bool) { return intKey(r.ID) }

// RawCalendarEventRSVP 日程回复，以用户 id 为键
type RawCalendarEventRSVP struct {
	CalendarEventID *int        `json:"calendarEventId,omitempty"`
	ChannelID       *string     `json:"channelId,omitempty"`
	ServerID        *string     `json:"serverId,omitempty"`
	UserID          *string     `json:"userId,omitempty"`
	Status          *RSVPStatus `json:"status,omitempty"`
	CreatedBy       *string     `json:"createdBy,omitempty"`
	CreatedAt       *time.Time  `json:"createdAt,omitempty"`
	UpdatedBy       *string     `json:"updatedBy,omitempty"`
	UpdatedAt       *time.Time  `json:"updatedAt,omitempty"`
}

func (r RawCalendarEventRSVP) RawKey() (string, bool) { return strKey(r.UserID) }

// ListItemNote 列表项备注
type ListItemNote struct {
	Content   string     `json:"content"`
	Mentions  *Mentions  `json:"mentions,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	CreatedBy string     `json:"createdBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// RawListItem 列表项
type RawListItem struct {
	ID                 *string       `json:"id,omitempty"`
	ServerID           *string       `json:"serverId,omitempty"`
	ChannelID          *string       `json:"channelId,omitempty"`
	Message            *string       `json:"message,omitempty"`
	Mentions           *Mentions     `json:"mentions,omitempty"`
	CreatedAt          *time.Time    `json:"createdAt,omitempty"`
	CreatedBy          *string       `json:"createdBy,omitempty"`
	CreatedByWebhookID *string       `json:"createdByWebhookId,omitempty"`
	UpdatedAt          *time.Time    `json:"updatedAt,omitempty"`
	UpdatedBy          *string       `json:"updatedBy,omitempty"`
	ParentListItemID   *string       `json:"parentListItemId,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
	CompletedBy        *string       `json:"completedBy,omitempty"`
	Note               *ListItemNote `json:"note,omitempty"`
}

func (r RawListItem) RawKey() (string, bool) { return strKey(r.ID) }

// RawWebhook 服务器 webhook
type RawWebhook struct {
	ID        *string    `json:"id,omitempty"`
	ServerID  *string    `json:"serverId,omitempty"`
	ChannelID *string    `json:"channelId,omitempty"`
	Name      *string    `json:"name,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	CreatedBy *string    `json:"createdBy,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	Token     *string    `json:"token,omitempty"`
}

func (r RawWebhook) RawKey() (string, bool) { return strKey(r.ID) }

func strKey(id *string) (string, bool) {
	if id == nil || *id == "" {
		return "", false
	}
	return *id, true
}

func intKey(id *int) (int, bool) {
	if id == nil || *id == 0 {
		return 0, false
	}
	return *id, true
}
