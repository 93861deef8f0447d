package guilded

import (
	"context"
	"net/http"

	"github.com/tokmz/guilded/pkg/structures"
)

// CreateServerChannel 创建频道
func (c *Client) CreateServerChannel(ctx context.Context, opts ServerChannelCreateOptions) (*structures.Channel, error) {
	if err := require(str("name", opts.Name), str("type", string(opts.Type))); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawServerChannel](c, ctx, http.MethodPost, EndpointChannels(), "channel", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateChannel(*raw), nil
}

// GetServerChannel 获取频道并合并到所属服务器
func (c *Client) GetServerChannel(ctx context.Context, channelID string) (*structures.Channel, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawServerChannel](c, ctx, http.MethodGet, EndpointChannel(channelID), "channel", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateChannel(*raw), nil
}

// EditServerChannel 修改频道
func (c *Client) EditServerChannel(ctx context.Context, channelID string, opts ServerChannelEditOptions) (*structures.Channel, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawServerChannel](c, ctx, http.MethodPatch, EndpointChannel(channelID), "channel", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateChannel(*raw), nil
}

// DeleteServerChannel 删除频道
func (c *Client) DeleteServerChannel(ctx context.Context, channelID string) error {
	if err := require(str("channel ID", channelID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointChannel(channelID), nil)
}

// CreateChannelMessage 发送消息
func (c *Client) CreateChannelMessage(ctx context.Context, channelID string, opts MessageCreateOptions) (*structures.ChatMessage, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	if opts.Content == "" && len(opts.Embeds) == 0 {
		return nil, ErrMissingOptions.WithMessage("message needs content or embeds")
	}
	raw, err := call[structures.RawChatMessage](c, ctx, http.MethodPost, EndpointChannelMessages(channelID), "message", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateMessage(*raw), nil
}

// GetChannelMessage 获取消息
func (c *Client) GetChannelMessage(ctx context.Context, channelID, messageID string) (*structures.ChatMessage, error) {
	if err := require(str("channel ID", channelID), str("message ID", messageID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawChatMessage](c, ctx, http.MethodGet, EndpointChannelMessage(channelID, messageID), "message", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.updateMessage(*raw), nil
}

// GetChannelMessages 获取频道消息
func (c *Client) GetChannelMessages(ctx context.Context, channelID string, filter *MessagesFilter) ([]*structures.ChatMessage, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawChatMessage](c, ctx, http.MethodGet, EndpointChannelMessages(channelID), "messages", nil, filter.params())
	if err != nil {
		return nil, err
	}
	return each(*raws, c.updateMessage), nil
}

// EditChannelMessage 编辑消息
func (c *Client) EditChannelMessage(ctx context.Context, channelID, messageID string, opts MessageEditOptions) (*structures.ChatMessage, error) {
	if err := require(str("channel ID", channelID), str("message ID", messageID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawChatMessage](c, ctx, http.MethodPut, EndpointChannelMessage(channelID, messageID), "message", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateMessage(*raw), nil
}

// DeleteChannelMessage 删除消息
func (c *Client) DeleteChannelMessage(ctx context.Context, channelID, messageID string) error {
	if err := require(str("channel ID", channelID), str("message ID", messageID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointChannelMessage(channelID, messageID), nil)
}

// AddReactionEmote 为内容添加表情回应
func (c *Client) AddReactionEmote(ctx context.Context, channelID, contentID string, emoteID int) error {
	if err := require(str("channel ID", channelID), str("content ID", contentID), num("emote ID", emoteID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPut, EndpointChannelContentEmote(channelID, contentID, emoteID), nil)
}

// DeleteReactionEmote 移除内容上的表情回应
func (c *Client) DeleteReactionEmote(ctx context.Context, channelID, contentID string, emoteID int) error {
	if err := require(str("channel ID", channelID), str("content ID", contentID), num("emote ID", emoteID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointChannelContentEmote(channelID, contentID, emoteID), nil)
}
