package gateway

import (
	"context"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/utils/pointer"
)

// channel 已缓存的频道，不存在时为 nil
func (h *Handler) channel(serverID, channelID string) *structures.Channel {
	server, ok := h.client.LookupServer(serverID)
	if !ok {
		return nil
	}
	ch, _ := server.Channels().Get(channelID)
	return ch
}

// upsert 集合存在时合并到缓存并返回快照，否则构建临时实体；remove 为 true 时合并后删除
// 事件处理器在其他协程读取数据，缓存实例会被之后的事件继续修改，因此只发布快照
func upsert[K comparable, R cache.Raw[K], E cache.Entity[K, R]](
	col *cache.TypedCollection[K, R, E],
	raw R,
	build cache.Constructor[R, E],
	c structures.Client,
	remove bool,
) E {
	if col == nil {
		return build(raw, c)
	}
	e := col.UpdateSnapshot(raw)
	if remove {
		col.Delete(e.Key())
	}
	return e
}

func botServerMembershipCreate(h *Handler, _ context.Context, p *botMembershipPayload) {
	server := h.client.Servers().UpdateSnapshot(p.Server)
	h.client.Emit(EventBotServerMembershipCreate, server)
}

func botServerMembershipDelete(h *Handler, _ context.Context, p *botMembershipPayload) {
	server := upsert(h.client.Servers(), p.Server, structures.NewServer, h.client, true)
	h.client.Emit(EventBotServerMembershipDelete, server)
}

func calendarEvent(name string, remove bool) func(*Handler, context.Context, *calendarEventPayload) {
	return func(h *Handler, _ context.Context, p *calendarEventPayload) {
		raw := p.CalendarEvent
		channelID := pointer.Get(raw.ChannelID)
		h.hydrateChannel(p.ServerID, channelID)

		var col *cache.TypedCollection[int, structures.RawCalendarEvent, *structures.CalendarEvent]
		if ch := h.channel(p.ServerID, channelID); ch != nil {
			col = ch.CalendarEvents()
		}
		h.client.Emit(name, upsert(col, raw, structures.NewCalendarEvent, h.client, remove))
	}
}

func calendarEventRSVP(name string, remove bool) func(*Handler, context.Context, *calendarEventRSVPPayload) {
	return func(h *Handler, _ context.Context, p *calendarEventRSVPPayload) {
		h.client.Emit(name, h.rsvp(p.ServerID, p.CalendarEventRSVP, remove))
	}
}

func calendarEventRSVPMany(h *Handler, _ context.Context, p *calendarEventRSVPManyPayload) {
	rsvps := make([]*structures.CalendarEventRSVP, 0, len(p.CalendarEventRSVPs))
	for _, raw := range p.CalendarEventRSVPs {
		rsvps = append(rsvps, h.rsvp(p.ServerID, raw, false))
	}
	h.client.Emit(EventCalendarEventRSVPManyUpdate, rsvps)
}

func (h *Handler) rsvp(serverID string, raw structures.RawCalendarEventRSVP, remove bool) *structures.CalendarEventRSVP {
	channelID := pointer.Get(raw.ChannelID)
	eventID := pointer.Get(raw.CalendarEventID)
	h.hydrateEvent(serverID, channelID, eventID)

	var col *cache.TypedCollection[string, structures.RawCalendarEventRSVP, *structures.CalendarEventRSVP]
	if ch := h.channel(serverID, channelID); ch != nil && ch.CalendarEvents() != nil {
		if e, ok := ch.CalendarEvents().Get(eventID); ok {
			col = e.RSVPs()
		}
	}
	return upsert(col, raw, structures.NewCalendarEventRSVP, h.client, remove)
}

func messageReaction(name string) func(*Handler, context.Context, *reactionPayload) {
	return func(h *Handler, _ context.Context, p *reactionPayload) {
		h.hydrateChannel(p.ServerID, p.Reaction.ChannelID)
		h.client.Emit(name, p.info())
	}
}

func topicReaction(name string) func(*Handler, context.Context, *reactionPayload) {
	return func(h *Handler, _ context.Context, p *reactionPayload) {
		h.hydrateTopic(p.ServerID, p.Reaction.ChannelID, p.Reaction.ForumTopicID)
		h.client.Emit(name, p.info())
	}
}

func chatMessage(name string, remove bool) func(*Handler, context.Context, *chatMessagePayload) {
	return func(h *Handler, _ context.Context, p *chatMessagePayload) {
		raw := p.Message
		if raw.ServerID == nil && p.ServerID != "" {
			raw.ServerID = &p.ServerID
		}
		channelID := pointer.Get(raw.ChannelID)
		h.hydrateChannel(p.ServerID, channelID)

		var col *cache.TypedCollection[string, structures.RawChatMessage, *structures.ChatMessage]
		if ch := h.channel(p.ServerID, channelID); ch != nil {
			col = ch.Messages()
		}
		h.client.Emit(name, upsert(col, raw, structures.NewChatMessage, h.client, remove))
	}
}

func doc(name string, remove bool) func(*Handler, context.Context, *docPayload) {
	return func(h *Handler, _ context.Context, p *docPayload) {
		channelID := pointer.Get(p.Doc.ChannelID)
		h.hydrateChannel(p.ServerID, channelID)

		var col *cache.TypedCollection[int, structures.RawDoc, *structures.Doc]
		if ch := h.channel(p.ServerID, channelID); ch != nil {
			col = ch.Docs()
		}
		h.client.Emit(name, upsert(col, p.Doc, structures.NewDoc, h.client, remove))
	}
}

func forumTopic(name string, remove bool) func(*Handler, context.Context, *forumTopicPayload) {
	return func(h *Handler, _ context.Context, p *forumTopicPayload) {
		channelID := pointer.Get(p.ForumTopic.ChannelID)
		h.hydrateChannel(p.ServerID, channelID)

		var col *cache.TypedCollection[int, structures.RawForumTopic, *structures.ForumTopic]
		if ch := h.channel(p.ServerID, channelID); ch != nil {
			col = ch.Topics()
		}
		h.client.Emit(name, upsert(col, p.ForumTopic, structures.NewForumTopic, h.client, remove))
	}
}

func forumTopicComment(name string, remove bool) func(*Handler, context.Context, *forumTopicCommentPayload) {
	return func(h *Handler, _ context.Context, p *forumTopicCommentPayload) {
		raw := p.ForumTopicComment
		channelID := pointer.Get(raw.ChannelID)
		topicID := pointer.Get(raw.ForumTopicID)
		h.hydrateTopic(p.ServerID, channelID, topicID)

		var col *cache.TypedCollection[int, structures.RawForumTopicComment, *structures.ForumTopicComment]
		if ch := h.channel(p.ServerID, channelID); ch != nil && ch.Topics() != nil {
			if topic, ok := ch.Topics().Get(topicID); ok {
				col = topic.Comments()
			}
		}
		comment := upsert(col, raw, func(raw structures.RawForumTopicComment, extra ...any) *structures.ForumTopicComment {
			return structures.NewForumTopicComment(raw, append(extra, p.ServerID)...)
		}, h.client, remove)
		h.client.Emit(name, comment)
	}
}

func listItem(name string) func(*Handler, context.Context, *listItemPayload) {
	return func(h *Handler, _ context.Context, p *listItemPayload) {
		h.client.Emit(name, structures.NewListItem(p.ListItem, h.client))
	}
}

func serverChannel(name string, remove bool) func(*Handler, context.Context, *serverChannelPayload) {
	return func(h *Handler, _ context.Context, p *serverChannelPayload) {
		raw := p.Channel
		if raw.ServerID == nil && p.ServerID != "" {
			raw.ServerID = &p.ServerID
		}
		var col *cache.TypedCollection[string, structures.RawServerChannel, *structures.Channel]
		if server, ok := h.client.LookupServer(pointer.Get(raw.ServerID)); ok {
			col = server.Channels()
		}
		h.client.Emit(name, upsert(col, raw, structures.NewChannel, h.client, remove))
	}
}

func serverMemberJoin(h *Handler, _ context.Context, p *memberJoinedPayload) {
	var member *structures.ServerMember
	if server, ok := h.client.LookupServer(p.ServerID); ok {
		member = server.Members().UpdateSnapshot(p.Member)
	} else {
		member = structures.NewServerMember(p.Member, h.client, p.ServerID)
	}
	if p.Member.User != nil {
		h.client.UpdateUser(*p.Member.User)
	}
	h.client.Emit(EventServerMemberJoin, member)
}

func serverMemberRemove(h *Handler, _ context.Context, p *memberRemovedPayload) {
	if server, ok := h.client.LookupServer(p.ServerID); ok {
		server.Members().Delete(p.UserID)
	}
	h.client.Emit(EventServerMemberRemove, &structures.MemberRemoveInfo{
		ServerID: p.ServerID,
		UserID:   p.UserID,
		IsKick:   p.IsKick,
		IsBan:    p.IsBan,
	})
}

func serverMemberUpdate(h *Handler, _ context.Context, p *memberUpdatedPayload) {
	if server, ok := h.client.LookupServer(p.ServerID); ok {
		if member, ok := server.Members().Get(p.UserInfo.ID); ok {
			// 昵称缺失表示已清除
			nickname := ""
			if p.UserInfo.Nickname != nil {
				nickname = *p.UserInfo.Nickname
			}
			server.Members().UpdateEntity(member, structures.RawServerMember{Nickname: &nickname})
		}
	}
	h.client.Emit(EventServerMemberUpdate, &structures.MemberUpdateInfo{
		ServerID: p.ServerID,
		UserID:   p.UserInfo.ID,
		Nickname: p.UserInfo.Nickname,
	})
}

func serverMemberBan(name string) func(*Handler, context.Context, *memberBanPayload) {
	return func(h *Handler, _ context.Context, p *memberBanPayload) {
		h.client.Emit(name, structures.NewServerMemberBan(p.ServerMemberBan, h.client, p.ServerID))
	}
}

func serverRolesUpdate(h *Handler, _ context.Context, p *rolesUpdatedPayload) {
	info := &structures.MemberUpdateInfo{
		ServerID: p.ServerID,
		Roles:    make(map[string][]int, len(p.MemberRoleIDs)),
	}
	server, cached := h.client.LookupServer(p.ServerID)
	for i, entry := range p.MemberRoleIDs {
		if i == 0 {
			info.UserID = entry.UserID
		}
		roles := entry.RoleIDs
		if roles == nil {
			roles = []int{}
		}
		info.Roles[entry.UserID] = roles
		if !cached {
			continue
		}
		if member, ok := server.Members().Get(entry.UserID); ok {
			server.Members().UpdateEntity(member, structures.RawServerMember{RoleIDs: roles})
		}
	}
	h.client.Emit(EventServerRolesUpdate, info)
}

func serverWebhook(name string) func(*Handler, context.Context, *webhookPayload) {
	return func(h *Handler, _ context.Context, p *webhookPayload) {
		h.client.Emit(name, structures.NewWebhook(p.Webhook, h.client))
	}
}
