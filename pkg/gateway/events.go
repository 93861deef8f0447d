package gateway

// 分发器发出的领域事件名，与 Event.Data 的类型
const (
	EventBotServerMembershipCreate       = "botServerMembershipCreate"       // *structures.Server
	EventBotServerMembershipDelete       = "botServerMembershipDelete"       // *structures.Server
	EventCalendarEventCreate             = "calendarEventCreate"             // *structures.CalendarEvent
	EventCalendarEventUpdate             = "calendarEventUpdate"             // *structures.CalendarEvent
	EventCalendarEventDelete             = "calendarEventDelete"             // *structures.CalendarEvent
	EventCalendarEventRSVPUpdate         = "calendarEventRSVPUpdate"         // *structures.CalendarEventRSVP
	EventCalendarEventRSVPManyUpdate     = "calendarEventRSVPManyUpdate"     // []*structures.CalendarEventRSVP
	EventCalendarEventRSVPDelete         = "calendarEventRSVPDelete"         // *structures.CalendarEventRSVP
	EventChannelMessageReactionCreate    = "channelMessageReactionCreate"    // *structures.ReactionInfo
	EventChannelMessageReactionDelete    = "channelMessageReactionDelete"    // *structures.ReactionInfo
	EventChatMessageCreate               = "chatMessageCreate"               // *structures.ChatMessage
	EventChatMessageUpdate               = "chatMessageUpdate"               // *structures.ChatMessage
	EventChatMessageDelete               = "chatMessageDelete"               // *structures.ChatMessage
	EventDocCreate                       = "docCreate"                       // *structures.Doc
	EventDocUpdate                       = "docUpdate"                       // *structures.Doc
	EventDocDelete                       = "docDelete"                       // *structures.Doc
	EventForumTopicCreate                = "forumTopicCreate"                // *structures.ForumTopic
	EventForumTopicUpdate                = "forumTopicUpdate"                // *structures.ForumTopic
	EventForumTopicDelete                = "forumTopicDelete"                // *structures.ForumTopic
	EventForumTopicPin                   = "forumTopicPin"                   // *structures.ForumTopic
	EventForumTopicUnpin                 = "forumTopicUnpin"                 // *structures.ForumTopic
	EventForumTopicLock                  = "forumTopicLock"                  // *structures.ForumTopic
	EventForumTopicUnlock                = "forumTopicUnlock"                // *structures.ForumTopic
	EventForumTopicReactionCreate        = "forumTopicReactionCreate"        // *structures.ReactionInfo
	EventForumTopicReactionDelete        = "forumTopicReactionDelete"        // *structures.ReactionInfo
	EventForumTopicCommentCreate         = "forumTopicCommentCreate"         // *structures.ForumTopicComment
	EventForumTopicCommentUpdate         = "forumTopicCommentUpdate"         // *structures.ForumTopicComment
	EventForumTopicCommentDelete         = "forumTopicCommentDelete"         // *structures.ForumTopicComment
	EventForumTopicCommentReactionCreate = "forumTopicCommentReactionCreate" // *structures.ReactionInfo
	EventForumTopicCommentReactionDelete = "forumTopicCommentReactionDelete" // *structures.ReactionInfo
	EventListItemCreate                  = "listItemCreate"                  // *structures.ListItem
	EventListItemUpdate                  = "listItemUpdate"                  // *structures.ListItem
	EventListItemDelete                  = "listItemDelete"                  // *structures.ListItem
	EventListItemComplete                = "listItemComplete"                // *structures.ListItem
	EventListItemUncomplete              = "listItemUncomplete"              // *structures.ListItem
	EventServerChannelCreate             = "serverChannelCreate"             // *structures.Channel
	EventServerChannelUpdate             = "serverChannelUpdate"             // *structures.Channel
	EventServerChannelDelete             = "serverChannelDelete"             // *structures.Channel
	EventServerMemberJoin                = "serverMemberJoin"                // *structures.ServerMember
	EventServerMemberRemove              = "serverMemberRemove"              // *structures.MemberRemoveInfo
	EventServerMemberUpdate              = "serverMemberUpdate"              // *structures.MemberUpdateInfo
	EventServerMemberBan                 = "serverMemberBan"                 // *structures.ServerMemberBan
	EventServerMemberUnban               = "serverMemberUnban"               // *structures.ServerMemberBan
	EventServerRolesUpdate               = "serverRolesUpdate"               // *structures.MemberUpdateInfo
	EventServerWebhookCreate             = "serverWebhookCreate"             // *structures.Webhook
	EventServerWebhookUpdate             = "serverWebhookUpdate"             // *structures.Webhook
)
