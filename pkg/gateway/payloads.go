package gateway

import "github.com/tokmz/guilded/pkg/structures"

// 网关事件类型（数据包的 t 字段）
const (
	BotServerMembershipCreated       = "BotServerMembershipCreated"
	BotServerMembershipDeleted       = "BotServerMembershipDeleted"
	CalendarEventCreated             = "CalendarEventCreated"
	CalendarEventUpdated             = "CalendarEventUpdated"
	CalendarEventDeleted             = "CalendarEventDeleted"
	CalendarEventRsvpUpdated         = "CalendarEventRsvpUpdated"
	CalendarEventRsvpManyUpdated     = "CalendarEventRsvpManyUpdated"
	CalendarEventRsvpDeleted         = "CalendarEventRsvpDeleted"
	ChannelMessageReactionCreated    = "ChannelMessageReactionCreated"
	ChannelMessageReactionDeleted    = "ChannelMessageReactionDeleted"
	ChatMessageCreated               = "ChatMessageCreated"
	ChatMessageUpdated               = "ChatMessageUpdated"
	ChatMessageDeleted               = "ChatMessageDeleted"
	DocCreated                       = "DocCreated"
	DocUpdated                       = "DocUpdated"
	DocDeleted                       = "DocDeleted"
	ForumTopicCreated                = "ForumTopicCreated"
	ForumTopicUpdated                = "ForumTopicUpdated"
	ForumTopicDeleted                = "ForumTopicDeleted"
	ForumTopicPinned                 = "ForumTopicPinned"
	ForumTopicUnpinned               = "ForumTopicUnpinned"
	ForumTopicLocked                 = "ForumTopicLocked"
	ForumTopicUnlocked               = "ForumTopicUnlocked"
	ForumTopicReactionCreated        = "ForumTopicReactionCreated"
	ForumTopicReactionDeleted        = "ForumTopicReactionDeleted"
	ForumTopicCommentCreated         = "ForumTopicCommentCreated"
	ForumTopicCommentUpdated         = "ForumTopicCommentUpdated"
	ForumTopicCommentDeleted         = "ForumTopicCommentDeleted"
	ForumTopicCommentReactionCreated = "ForumTopicCommentReactionCreated"
	ForumTopicCommentReactionDeleted = "ForumTopicCommentReactionDeleted"
	ListItemCreated                  = "ListItemCreated"
	ListItemUpdated                  = "ListItemUpdated"
	ListItemDeleted                  = "ListItemDeleted"
	ListItemCompleted                = "ListItemCompleted"
	ListItemUncompleted              = "ListItemUncompleted"
	ServerChannelCreated             = "ServerChannelCreated"
	ServerChannelUpdated             = "ServerChannelUpdated"
	ServerChannelDeleted             = "ServerChannelDeleted"
	ServerMemberJoined               = "ServerMemberJoined"
	ServerMemberRemoved              = "ServerMemberRemoved"
	ServerMemberUpdated              = "ServerMemberUpdated"
	ServerMemberBanned               = "ServerMemberBanned"
	ServerMemberUnbanned             = "ServerMemberUnbanned"
	ServerRolesUpdated               = "ServerRolesUpdated"
	ServerWebhookCreated             = "ServerWebhookCreated"
	ServerWebhookUpdated             = "ServerWebhookUpdated"
)

// envelope 所有事件共有的字段，用于预处理
type envelope struct {
	ServerID string `json:"serverId"`
	Message  *struct {
		Type structures.MessageType `json:"type"`
	} `json:"message"`
}

type botMembershipPayload struct {
	Server    structures.RawServer `json:"server"`
	CreatedBy string               `json:"createdBy"`
	DeletedBy string               `json:"deletedBy"`
}

type calendarEventPayload struct {
	ServerID      string                      `json:"serverId"`
	CalendarEvent structures.RawCalendarEvent `json:"calendarEvent"`
}

type calendarEventRSVPPayload struct {
	ServerID          string                          `json:"serverId"`
	CalendarEventRSVP structures.RawCalendarEventRSVP `json:"calendarEventRsvp"`
}

type calendarEventRSVPManyPayload struct {
	ServerID           string                            `json:"serverId"`
	CalendarEventRSVPs []structures.RawCalendarEventRSVP `json:"calendarEventRsvps"`
}

type reactionPayload struct {
	ServerID string `json:"serverId"`
	Reaction struct {
		ChannelID           string              `json:"channelId"`
		CreatedBy           string              `json:"createdBy"`
		Emote               structures.RawEmote `json:"emote"`
		MessageID           string              `json:"messageId"`
		ForumTopicID        int                 `json:"forumTopicId"`
		ForumTopicCommentID int                 `json:"forumTopicCommentId"`
	} `json:"reaction"`
}

func (p *reactionPayload) info() *structures.ReactionInfo {
	return &structures.ReactionInfo{
		ServerID:  p.ServerID,
		ChannelID: p.Reaction.ChannelID,
		CreatedBy: p.Reaction.CreatedBy,
		Emote:     p.Reaction.Emote,
		MessageID: p.Reaction.MessageID,
		TopicID:   p.Reaction.ForumTopicID,
		CommentID: p.Reaction.ForumTopicCommentID,
	}
}

type chatMessagePayload struct {
	ServerID string                    `json:"serverId"`
	Message  structures.RawChatMessage `json:"message"`
}

type docPayload struct {
	ServerID string            `json:"serverId"`
	Doc      structures.RawDoc `json:"doc"`
}

type forumTopicPayload struct {
	ServerID   string                   `json:"serverId"`
	ForumTopic structures.RawForumTopic `json:"forumTopic"`
}

type forumTopicCommentPayload struct {
	ServerID          string                          `json:"serverId"`
	ForumTopicComment structures.RawForumTopicComment `json:"forumTopicComment"`
}

type listItemPayload struct {
	ServerID string                 `json:"serverId"`
	ListItem structures.RawListItem `json:"listItem"`
}

type serverChannelPayload struct {
	ServerID string                      `json:"serverId"`
	Channel  structures.RawServerChannel `json:"channel"`
}

type memberJoinedPayload struct {
	ServerID string                     `json:"serverId"`
	Member   structures.RawServerMember `json:"member"`
}

type memberRemovedPayload struct {
	ServerID string `json:"serverId"`
	UserID   string `json:"userId"`
	IsKick   bool   `json:"isKick"`
	IsBan    bool   `json:"isBan"`
}

type memberUpdatedPayload struct {
	ServerID string `json:"serverId"`
	UserInfo struct {
		ID       string  `json:"id"`
		Nickname *string `json:"nickname"`
	} `json:"userInfo"`
}

type memberBanPayload struct {
	ServerID        string                        `json:"serverId"`
	ServerMemberBan structures.RawServerMemberBan `json:"serverMemberBan"`
}

type rolesUpdatedPayload struct {
	ServerID      string `json:"serverId"`
	MemberRoleIDs []struct {
		UserID  string `json:"userId"`
		RoleIDs []int  `json:"roleIds"`
	} `json:"memberRoleIds"`
}

type webhookPayload struct {
	ServerID string                `json:"serverId"`
	Webhook  structures.RawWebhook `json:"webhook"`
}
