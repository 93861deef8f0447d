package gateway

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/errors"
	"github.com/tokmz/guilded/pkg/structures"
)

// ensureServer 同步拉取未缓存的服务器并插入根集合
func (h *Handler) ensureServer(ctx context.Context, serverID string) {
	key := "server:" + serverID
	if h.store.Has("miss:" + key) {
		return
	}

	servers := h.client.Servers()
	_, err, _ := h.store.Do(key, func() (any, error) {
		if s, ok := servers.Get(serverID); ok {
			return s, nil
		}
		s, err := h.client.GetServer(ctx, serverID)
		if err != nil {
			return nil, err
		}
		if !servers.Has(s.ID) {
			if _, err := servers.Add(s); err != nil {
				return nil, err
			}
		}
		return s, nil
	})
	if err != nil {
		h.store.Set("miss:"+key, true, h.missTTL)
		h.log.WarnContext(ctx, "failed to fetch server", zap.String("server_id", serverID), zap.Error(err))
	}
}

// hydrateChannel 后台补全频道
func (h *Handler) hydrateChannel(serverID, channelID string) {
	h.hydrate(serverID, channelID, nil)
}

// hydrateTopic 后台补全频道与论坛主题
func (h *Handler) hydrateTopic(serverID, channelID string, topicID int) {
	if topicID == 0 {
		h.hydrateChannel(serverID, channelID)
		return
	}
	h.hydrate(serverID, channelID, &child{
		key: "topic:" + channelID + ":" + strconv.Itoa(topicID),
		missing: func(ch *structures.Channel) bool {
			return ch.Topics() != nil && !ch.Topics().Has(topicID)
		},
		fetch: func(ctx context.Context, ch *structures.Channel) error {
			topic, err := h.client.GetForumTopic(ctx, channelID, topicID)
			if err != nil {
				return err
			}
			if !ch.Topics().Has(topic.ID) {
				_, err = ch.Topics().Add(topic)
			}
			return err
		},
	})
}

// hydrateEvent 后台补全频道与日程
func (h *Handler) hydrateEvent(serverID, channelID string, eventID int) {
	if eventID == 0 {
		h.hydrateChannel(serverID, channelID)
		return
	}
	h.hydrate(serverID, channelID, &child{
		key: "event:" + channelID + ":" + strconv.Itoa(eventID),
		missing: func(ch *structures.Channel) bool {
			return ch.CalendarEvents() != nil && !ch.CalendarEvents().Has(eventID)
		},
		fetch: func(ctx context.Context, ch *structures.Channel) error {
			e, err := h.client.GetCalendarEvent(ctx, channelID, eventID)
			if err != nil {
				return err
			}
			if !ch.CalendarEvents().Has(e.ID) {
				_, err = ch.CalendarEvents().Add(e)
			}
			return err
		},
	})
}

// child 频道下需要补全的子实体
type child struct {
	key     string
	missing func(ch *structures.Channel) bool
	fetch   func(ctx context.Context, ch *structures.Channel) error
}

// hydrate 频道或子实体未缓存时在后台拉取，不阻塞事件分发
// 服务器未缓存时跳过
func (h *Handler) hydrate(serverID, channelID string, sub *child) {
	if serverID == "" || channelID == "" {
		return
	}
	server, ok := h.client.LookupServer(serverID)
	if !ok {
		return
	}
	ch, cached := server.Channels().Get(channelID)
	if cached && (sub == nil || !sub.missing(ch)) {
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ch, err := h.fetchChannel(server, channelID)
		if errors.Is(err, errHydrationSkipped) {
			return
		}
		if err != nil {
			h.log.Warn("failed to fetch channel", zap.String("channel_id", channelID), zap.Error(err))
			return
		}
		if sub == nil || !sub.missing(ch) || h.store.Has("miss:"+sub.key) {
			return
		}
		_, err, _ = h.store.Do(sub.key, func() (any, error) {
			if !sub.missing(ch) {
				return nil, nil
			}
			return nil, sub.fetch(h.ctx, ch)
		})
		if err != nil {
			h.store.Set("miss:"+sub.key, true, h.missTTL)
			h.log.Warn("failed to hydrate channel content", zap.String("key", sub.key), zap.Error(err))
		}
	}()
}

func (h *Handler) fetchChannel(server *structures.Server, channelID string) (*structures.Channel, error) {
	if ch, ok := server.Channels().Get(channelID); ok {
		return ch, nil
	}
	key := "channel:" + channelID
	if h.store.Has("miss:" + key) {
		return nil, errHydrationSkipped
	}

	v, err, _ := h.store.Do(key, func() (any, error) {
		if ch, ok := server.Channels().Get(channelID); ok {
			return ch, nil
		}
		ch, err := h.client.GetServerChannel(h.ctx, channelID)
		if err != nil {
			return nil, err
		}
		if existing, ok := server.Channels().Get(ch.ID); ok {
			return existing, nil
		}
		if _, err := server.Channels().Add(ch); err != nil {
			return nil, err
		}
		return ch, nil
	})
	if err != nil {
		h.store.Set("miss:"+key, true, h.missTTL)
		return nil, err
	}
	return v.(*structures.Channel), nil
}
