package guilded

import (
	"context"
	"net/http"

	"github.com/tokmz/guilded/pkg/structures"
)

// CreateDoc 创建文档
func (c *Client) CreateDoc(ctx context.Context, channelID string, opts DocOptions) (*structures.Doc, error) {
	if err := require(str("channel ID", channelID), str("title", opts.Title), str("content", opts.Content)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawDoc](c, ctx, http.MethodPost, EndpointChannelDocs(channelID), "doc", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateDoc(*raw), nil
}

// GetDoc 获取文档
func (c *Client) GetDoc(ctx context.Context, channelID string, docID int) (*structures.Doc, error) {
	if err := require(str("channel ID", channelID), num("doc ID", docID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawDoc](c, ctx, http.MethodGet, EndpointChannelDoc(channelID, docID), "doc", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.updateDoc(*raw), nil
}

// GetDocs 获取频道文档
func (c *Client) GetDocs(ctx context.Context, channelID string, filter *PageFilter) ([]*structures.Doc, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawDoc](c, ctx, http.MethodGet, EndpointChannelDocs(channelID), "docs", nil, filter.params())
	if err != nil {
		return nil, err
	}
	return each(*raws, c.updateDoc), nil
}

// EditDoc 编辑文档
func (c *Client) EditDoc(ctx context.Context, channelID string, docID int, opts DocOptions) (*structures.Doc, error) {
	if err := require(str("channel ID", channelID), num("doc ID", docID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawDoc](c, ctx, http.MethodPatch, EndpointChannelDoc(channelID, docID), "doc", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateDoc(*raw), nil
}

// DeleteDoc 删除文档
func (c *Client) DeleteDoc(ctx context.Context, channelID string, docID int) error {
	if err := require(str("channel ID", channelID), num("doc ID", docID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointChannelDoc(channelID, docID), nil)
}

// CreateCalendarEvent 创建日程
func (c *Client) CreateCalendarEvent(ctx context.Context, channelID string, opts CalendarEventOptions) (*structures.CalendarEvent, error) {
	if err := require(str("channel ID", channelID), str("name", opts.Name)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawCalendarEvent](c, ctx, http.MethodPost, EndpointChannelEvents(channelID), "calendarEvent", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateCalendarEvent(*raw), nil
}

// GetCalendarEvent 获取日程并合并到缓存
func (c *Client) GetCalendarEvent(ctx context.Context, channelID string, eventID int) (*structures.CalendarEvent, error) {
	if err := require(str("channel ID", channelID), num("event ID", eventID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawCalendarEvent](c, ctx, http.MethodGet, EndpointChannelEvent(channelID, eventID), "calendarEvent", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.updateCalendarEvent(*raw), nil
}

// GetCalendarEvents 获取频道日程
func (c *Client) GetCalendarEvents(ctx context.Context, channelID string, filter *CalendarEventsFilter) ([]*structures.CalendarEvent, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawCalendarEvent](c, ctx, http.MethodGet, EndpointChannelEvents(channelID), "calendarEvents", nil, filter.params())
	if err != nil {
		return nil, err
	}
	return each(*raws, c.updateCalendarEvent), nil
}

// EditCalendarEvent 编辑日程
func (c *Client) EditCalendarEvent(ctx context.Context, channelID string, eventID int, opts CalendarEventOptions) (*structures.CalendarEvent, error) {
	if err := require(str("channel ID", channelID), num("event ID", eventID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawCalendarEvent](c, ctx, http.MethodPatch, EndpointChannelEvent(channelID, eventID), "calendarEvent", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateCalendarEvent(*raw), nil
}

// DeleteCalendarEvent 删除日程
func (c *Client) DeleteCalendarEvent(ctx context.Context, channelID string, eventID int) error {
	if err := require(str("channel ID", channelID), num("event ID", eventID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointChannelEvent(channelID, eventID), nil)
}

// GetCalendarEventRSVP 获取成员的日程回复
func (c *Client) GetCalendarEventRSVP(ctx context.Context, channelID string, eventID int, memberID string) (*structures.CalendarEventRSVP, error) {
	if err := require(str("channel ID", channelID), num("event ID", eventID), str("member ID", memberID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawCalendarEventRSVP](c, ctx, http.MethodGet, EndpointChannelEventRSVP(channelID, eventID, memberID), "calendarEventRsvp", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.updateRSVP(*raw), nil
}

// GetCalendarEventRSVPs 获取日程全部回复
func (c *Client) GetCalendarEventRSVPs(ctx context.Context, channelID string, eventID int) ([]*structures.CalendarEventRSVP, error) {
	if err := require(str("channel ID", channelID), num("event ID", eventID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawCalendarEventRSVP](c, ctx, http.MethodGet, EndpointChannelEventRSVPs(channelID, eventID), "calendarEventRsvps", nil, nil)
	if err != nil {
		return nil, err
	}
	return each(*raws, c.updateRSVP), nil
}

// EditCalendarEventRSVP 设置成员的日程回复
func (c *Client) EditCalendarEventRSVP(ctx context.Context, channelID string, eventID int, memberID string, opts CalendarEventRSVPEditOptions) (*structures.CalendarEventRSVP, error) {
	if err := require(str("channel ID", channelID), num("event ID", eventID), str("member ID", memberID), str("status", string(opts.Status))); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawCalendarEventRSVP](c, ctx, http.MethodPut, EndpointChannelEventRSVP(channelID, eventID, memberID), "calendarEventRsvp", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateRSVP(*raw), nil
}

// DeleteCalendarEventRSVP 删除成员的日程回复
func (c *Client) DeleteCalendarEventRSVP(ctx context.Context, channelID string, eventID int, memberID string) error {
	if err := require(str("channel ID", channelID), num("event ID", eventID), str("member ID", memberID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointChannelEventRSVP(channelID, eventID, memberID), nil)
}

// CreateListItem 创建列表项
func (c *Client) CreateListItem(ctx context.Context, channelID string, opts ListItemOptions) (*structures.ListItem, error) {
	if err := require(str("channel ID", channelID), str("message", opts.Message)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawListItem](c, ctx, http.MethodPost, EndpointListItems(channelID), "listItem", opts, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewListItem(*raw, c), nil
}

// GetListItem 获取列表项
func (c *Client) GetListItem(ctx context.Context, channelID, itemID string) (*structures.ListItem, error) {
	if err := require(str("channel ID", channelID), str("item ID", itemID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawListItem](c, ctx, http.MethodGet, EndpointListItem(channelID, itemID), "listItem", nil, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewListItem(*raw, c), nil
}

// GetListItems 获取频道列表项
func (c *Client) GetListItems(ctx context.Context, channelID string) ([]*structures.ListItem, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawListItem](c, ctx, http.MethodGet, EndpointListItems(channelID), "listItems", nil, nil)
	if err != nil {
		return nil, err
	}
	return each(*raws, func(raw structures.RawListItem) *structures.ListItem {
		return structures.NewListItem(raw, c)
	}), nil
}

// EditListItem 编辑列表项
func (c *Client) EditListItem(ctx context.Context, channelID, itemID string, opts ListItemOptions) (*structures.ListItem, error) {
	if err := require(str("channel ID", channelID), str("item ID", itemID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawListItem](c, ctx, http.MethodPatch, EndpointListItem(channelID, itemID), "listItem", opts, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewListItem(*raw, c), nil
}

// DeleteListItem 删除列表项
func (c *Client) DeleteListItem(ctx context.Context, channelID, itemID string) error {
	if err := require(str("channel ID", channelID), str("item ID", itemID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointListItem(channelID, itemID), nil)
}

// CompleteListItem 标记列表项完成
func (c *Client) CompleteListItem(ctx context.Context, channelID, itemID string) error {
	if err := require(str("channel ID", channelID), str("item ID", itemID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPost, EndpointListItemComplete(channelID, itemID), nil)
}

// UncompleteListItem 取消完成
func (c *Client) UncompleteListItem(ctx context.Context, channelID, itemID string) error {
	if err := require(str("channel ID", channelID), str("item ID", itemID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointListItemComplete(channelID, itemID), nil)
}
