package guilded

import (
	"context"
	"net/http"

	"github.com/tokmz/guilded/pkg/structures"
)

// CreateForumTopic 创建论坛主题
func (c *Client) CreateForumTopic(ctx context.Context, channelID string, opts ForumTopicOptions) (*structures.ForumTopic, error) {
	if err := require(str("channel ID", channelID), str("title", opts.Title)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawForumTopic](c, ctx, http.MethodPost, EndpointForumTopics(channelID), "forumTopic", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateForumTopic(*raw), nil
}

// GetForumTopic 获取论坛主题并合并到缓存
func (c *Client) GetForumTopic(ctx context.Context, channelID string, topicID int) (*structures.ForumTopic, error) {
	if err := require(str("channel ID", channelID), num("topic ID", topicID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawForumTopic](c, ctx, http.MethodGet, EndpointForumTopic(channelID, topicID), "forumTopic", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateForumTopic(*raw), nil
}

// GetForumTopics 获取论坛主题列表
func (c *Client) GetForumTopics(ctx context.Context, channelID string, filter *PageFilter) ([]*structures.ForumTopic, error) {
	if err := require(str("channel ID", channelID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawForumTopic](c, ctx, http.MethodGet, EndpointForumTopics(channelID), "forumTopics", nil, filter.params())
	if err != nil {
		return nil, err
	}
	return each(*raws, c.UpdateForumTopic), nil
}

// EditForumTopic 编辑论坛主题
func (c *Client) EditForumTopic(ctx context.Context, channelID string, topicID int, opts ForumTopicOptions) (*structures.ForumTopic, error) {
	if err := require(str("channel ID", channelID), num("topic ID", topicID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawForumTopic](c, ctx, http.MethodPatch, EndpointForumTopic(channelID, topicID), "forumTopic", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateForumTopic(*raw), nil
}

// DeleteForumTopic 删除论坛主题
func (c *Client) DeleteForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.topicAction(ctx, http.MethodDelete, channelID, topicID, EndpointForumTopic)
}

// PinForumTopic 置顶主题
func (c *Client) PinForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.topicAction(ctx, http.MethodPut, channelID, topicID, EndpointForumTopicPin)
}

// UnpinForumTopic 取消置顶
func (c *Client) UnpinForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.topicAction(ctx, http.MethodDelete, channelID, topicID, EndpointForumTopicPin)
}

// LockForumTopic 锁定主题
func (c *Client) LockForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.topicAction(ctx, http.MethodPut, channelID, topicID, EndpointForumTopicLock)
}

// UnlockForumTopic 解除锁定
func (c *Client) UnlockForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.topicAction(ctx, http.MethodDelete, channelID, topicID, EndpointForumTopicLock)
}

func (c *Client) topicAction(ctx context.Context, method, channelID string, topicID int, endpoint func(string, int) string) error {
	if err := require(str("channel ID", channelID), num("topic ID", topicID)); err != nil {
		return err
	}
	return c.exec(ctx, method, endpoint(channelID, topicID), nil)
}

// AddForumTopicReactionEmote 为主题添加表情回应
func (c *Client) AddForumTopicReactionEmote(ctx context.Context, channelID string, topicID, emoteID int) error {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("emote ID", emoteID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPut, EndpointForumTopicEmote(channelID, topicID, emoteID), nil)
}

// DeleteForumTopicReactionEmote 移除主题上的表情回应
func (c *Client) DeleteForumTopicReactionEmote(ctx context.Context, channelID string, topicID, emoteID int) error {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("emote ID", emoteID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointForumTopicEmote(channelID, topicID, emoteID), nil)
}

// CreateForumTopicComment 发表评论
func (c *Client) CreateForumTopicComment(ctx context.Context, channelID string, topicID int, opts ForumTopicCommentOptions) (*structures.ForumTopicComment, error) {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), str("content", opts.Content)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawForumTopicComment](c, ctx, http.MethodPost, EndpointForumTopicComments(channelID, topicID), "forumTopicComment", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateComment(*raw), nil
}

// GetForumTopicComment 获取评论
func (c *Client) GetForumTopicComment(ctx context.Context, channelID string, topicID, commentID int) (*structures.ForumTopicComment, error) {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("comment ID", commentID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawForumTopicComment](c, ctx, http.MethodGet, EndpointForumTopicComment(channelID, topicID, commentID), "forumTopicComment", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.updateComment(*raw), nil
}

// GetForumTopicComments 获取主题全部评论
func (c *Client) GetForumTopicComments(ctx context.Context, channelID string, topicID int) ([]*structures.ForumTopicComment, error) {
	if err := require(str("channel ID", channelID), num("topic ID", topicID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawForumTopicComment](c, ctx, http.MethodGet, EndpointForumTopicComments(channelID, topicID), "forumTopicComments", nil, nil)
	if err != nil {
		return nil, err
	}
	return each(*raws, c.updateComment), nil
}

// EditForumTopicComment 编辑评论
func (c *Client) EditForumTopicComment(ctx context.Context, channelID string, topicID, commentID int, opts ForumTopicCommentOptions) (*structures.ForumTopicComment, error) {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("comment ID", commentID), str("content", opts.Content)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawForumTopicComment](c, ctx, http.MethodPatch, EndpointForumTopicComment(channelID, topicID, commentID), "forumTopicComment", opts, nil)
	if err != nil {
		return nil, err
	}
	return c.updateComment(*raw), nil
}

// DeleteForumTopicComment 删除评论
func (c *Client) DeleteForumTopicComment(ctx context.Context, channelID string, topicID, commentID int) error {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("comment ID", commentID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointForumTopicComment(channelID, topicID, commentID), nil)
}

// AddForumTopicCommentReactionEmote 为评论添加表情回应
func (c *Client) AddForumTopicCommentReactionEmote(ctx context.Context, channelID string, topicID, commentID, emoteID int) error {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("comment ID", commentID), num("emote ID", emoteID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPut, EndpointForumTopicCommentEmote(channelID, topicID, commentID, emoteID), nil)
}

// DeleteForumTopicCommentReactionEmote 移除评论上的表情回应
func (c *Client) DeleteForumTopicCommentReactionEmote(ctx context.Context, channelID string, topicID, commentID, emoteID int) error {
	if err := require(str("channel ID", channelID), num("topic ID", topicID), num("comment ID", commentID), num("emote ID", emoteID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointForumTopicCommentEmote(channelID, topicID, commentID, emoteID), nil)
}
