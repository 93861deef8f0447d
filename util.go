package guilded

import (
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/utils/pointer"
)

// UpdateServer 合并服务器到缓存，缺少 id 时返回临时实体
func (c *Client) UpdateServer(raw structures.RawServer) *structures.Server {
	if pointer.Get(raw.ID) == "" {
		return structures.NewServer(raw, c)
	}
	return c.servers.Update(raw)
}

// UpdateChannel 合并频道到所属服务器，服务器未缓存时返回临时实体
func (c *Client) UpdateChannel(raw structures.RawServerChannel) *structures.Channel {
	if server, ok := c.servers.Get(pointer.Get(raw.ServerID)); ok {
		return server.Channels().Update(raw)
	}
	return structures.NewChannel(raw, c)
}

// UpdateMember 合并成员到所属服务器
// 机器人自己的成员数据同时记录为服务器的 Self
func (c *Client) UpdateMember(serverID, memberID string, raw structures.RawServerMember) *structures.ServerMember {
	user := structures.RawUser{}
	if raw.User != nil {
		user = *raw.User
	}
	if pointer.Get(user.ID) == "" {
		user.ID = &memberID
	}
	raw.User = &user

	server, ok := c.servers.Get(serverID)
	switch {
	case !ok:
		return structures.NewServerMember(raw, c, serverID)
	case memberID != "" && memberID == c.SelfID():
		return server.UpdateSelf(raw)
	default:
		return server.Members().Update(raw)
	}
}

// UpdateForumTopic 合并主题到所属论坛频道，频道未缓存时返回临时实体
func (c *Client) UpdateForumTopic(raw structures.RawForumTopic) *structures.ForumTopic {
	if ch := c.cachedChannel(pointer.Get(raw.ServerID), pointer.Get(raw.ChannelID)); ch != nil && ch.Topics() != nil {
		return ch.Topics().Update(raw)
	}
	return structures.NewForumTopic(raw, c)
}

func (c *Client) updateMessage(raw structures.RawChatMessage) *structures.ChatMessage {
	if ch := c.cachedChannel(pointer.Get(raw.ServerID), pointer.Get(raw.ChannelID)); ch != nil && ch.Messages() != nil {
		return ch.Messages().Update(raw)
	}
	return structures.NewChatMessage(raw, c)
}

func (c *Client) updateDoc(raw structures.RawDoc) *structures.Doc {
	if ch := c.cachedChannel(pointer.Get(raw.ServerID), pointer.Get(raw.ChannelID)); ch != nil && ch.Docs() != nil {
		return ch.Docs().Update(raw)
	}
	return structures.NewDoc(raw, c)
}

func (c *Client) updateCalendarEvent(raw structures.RawCalendarEvent) *structures.CalendarEvent {
	if ch := c.cachedChannel(pointer.Get(raw.ServerID), pointer.Get(raw.ChannelID)); ch != nil && ch.CalendarEvents() != nil {
		return ch.CalendarEvents().Update(raw)
	}
	return structures.NewCalendarEvent(raw, c)
}

func (c *Client) updateRSVP(raw structures.RawCalendarEventRSVP) *structures.CalendarEventRSVP {
	ch := c.cachedChannel(pointer.Get(raw.ServerID), pointer.Get(raw.ChannelID))
	if ch != nil && ch.CalendarEvents() != nil {
		if e, ok := ch.CalendarEvents().Get(pointer.Get(raw.CalendarEventID)); ok {
			return e.RSVPs().Update(raw)
		}
	}
	return structures.NewCalendarEventRSVP(raw, c)
}

func (c *Client) updateComment(raw structures.RawForumTopicComment) *structures.ForumTopicComment {
	ch := c.cachedChannel("", pointer.Get(raw.ChannelID))
	if ch != nil && ch.Topics() != nil {
		if topic, ok := ch.Topics().Get(pointer.Get(raw.ForumTopicID)); ok {
			return topic.Comments().Update(raw)
		}
	}
	if ch != nil {
		return structures.NewForumTopicComment(raw, c, ch.ServerID)
	}
	return structures.NewForumTopicComment(raw, c)
}

// cachedChannel 已缓存的频道，serverID 为空时在所有服务器中查找
func (c *Client) cachedChannel(serverID, channelID string) *structures.Channel {
	if channelID == "" {
		return nil
	}
	if serverID != "" {
		server, ok := c.servers.Get(serverID)
		if !ok {
			return nil
		}
		ch, _ := server.Channels().Get(channelID)
		return ch
	}
	var found *structures.Channel
	c.servers.Range(func(_ string, s *structures.Server) bool {
		found, _ = s.Channels().Get(channelID)
		return found == nil
	})
	return found
}
