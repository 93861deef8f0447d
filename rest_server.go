package guilded

import (
	"context"
	"net/http"

	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/utils/pointer"
)

// GetServer 获取服务器并合并到缓存
func (c *Client) GetServer(ctx context.Context, serverID string) (*structures.Server, error) {
	if err := require(str("server ID", serverID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawServer](c, ctx, http.MethodGet, EndpointServer(serverID), "server", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateServer(*raw), nil
}

// GetUser 获取用户并合并到缓存
func (c *Client) GetUser(ctx context.Context, userID string) (*structures.User, error) {
	if err := require(str("user ID", userID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawUser](c, ctx, http.MethodGet, EndpointUser(userID), "user", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateUser(*raw), nil
}

// GetServerMember 获取成员
func (c *Client) GetServerMember(ctx context.Context, serverID, memberID string) (*structures.ServerMember, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawServerMember](c, ctx, http.MethodGet, EndpointServerMember(serverID, memberID), "member", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.UpdateMember(serverID, memberID, *raw), nil
}

// GetServerMembers 获取服务器全部成员
func (c *Client) GetServerMembers(ctx context.Context, serverID string) ([]*structures.ServerMember, error) {
	if err := require(str("server ID", serverID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawServerMember](c, ctx, http.MethodGet, EndpointServerMembers(serverID), "members", nil, nil)
	if err != nil {
		return nil, err
	}
	return each(*raws, func(raw structures.RawServerMember) *structures.ServerMember {
		var memberID string
		if raw.User != nil {
			memberID = pointer.Get(raw.User.ID)
		}
		return c.UpdateMember(serverID, memberID, raw)
	}), nil
}

// EditServerMember 修改成员昵称，Nickname 为 nil 时清除
func (c *Client) EditServerMember(ctx context.Context, serverID, memberID string, opts ServerMemberEditOptions) error {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return err
	}
	endpoint := EndpointServerMemberNickname(serverID, memberID)
	if opts.Nickname == nil {
		return c.exec(ctx, http.MethodDelete, endpoint, nil)
	}
	return c.exec(ctx, http.MethodPut, endpoint, opts)
}

// RemoveServerMember 踢出成员
func (c *Client) RemoveServerMember(ctx context.Context, serverID, memberID string) error {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointServerMember(serverID, memberID), nil)
}

// CreateServerMemberBan 封禁成员
func (c *Client) CreateServerMemberBan(ctx context.Context, serverID, memberID, reason string) (*structures.ServerMemberBan, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return nil, err
	}
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	raw, err := call[structures.RawServerMemberBan](c, ctx, http.MethodPost, EndpointServerBan(serverID, memberID), "serverMemberBan", body, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewServerMemberBan(*raw, c, serverID), nil
}

// GetServerMemberBan 获取封禁记录
func (c *Client) GetServerMemberBan(ctx context.Context, serverID, memberID string) (*structures.ServerMemberBan, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawServerMemberBan](c, ctx, http.MethodGet, EndpointServerBan(serverID, memberID), "serverMemberBan", nil, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewServerMemberBan(*raw, c, serverID), nil
}

// GetServerMemberBans 获取服务器封禁列表
func (c *Client) GetServerMemberBans(ctx context.Context, serverID string) ([]*structures.ServerMemberBan, error) {
	if err := require(str("server ID", serverID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawServerMemberBan](c, ctx, http.MethodGet, EndpointServerBans(serverID), "serverMemberBans", nil, nil)
	if err != nil {
		return nil, err
	}
	return each(*raws, func(raw structures.RawServerMemberBan) *structures.ServerMemberBan {
		return structures.NewServerMemberBan(raw, c, serverID)
	}), nil
}

// RemoveServerMemberBan 解除封禁
func (c *Client) RemoveServerMemberBan(ctx context.Context, serverID, memberID string) error {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointServerBan(serverID, memberID), nil)
}

// GetServerMemberRoles 获取成员角色 id
func (c *Client) GetServerMemberRoles(ctx context.Context, serverID, memberID string) ([]int, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return nil, err
	}
	roles, err := call[[]int](c, ctx, http.MethodGet, EndpointServerMemberRoles(serverID, memberID), "roleIds", nil, nil)
	if err != nil {
		return nil, err
	}
	return *roles, nil
}

// AddServerMemberRole 为成员添加角色
func (c *Client) AddServerMemberRole(ctx context.Context, serverID, memberID string, roleID int) error {
	if err := require(str("server ID", serverID), str("member ID", memberID), num("role ID", roleID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPut, EndpointServerMemberRole(serverID, memberID, roleID), nil)
}

// RemoveServerMemberRole 移除成员角色
func (c *Client) RemoveServerMemberRole(ctx context.Context, serverID, memberID string, roleID int) error {
	if err := require(str("server ID", serverID), str("member ID", memberID), num("role ID", roleID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointServerMemberRole(serverID, memberID, roleID), nil)
}

// AddServerMemberGroup 将成员加入分组
func (c *Client) AddServerMemberGroup(ctx context.Context, groupID, memberID string) error {
	if err := require(str("group ID", groupID), str("member ID", memberID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPut, EndpointGroupMember(groupID, memberID), nil)
}

// RemoveServerMemberGroup 将成员移出分组
func (c *Client) RemoveServerMemberGroup(ctx context.Context, groupID, memberID string) error {
	if err := require(str("group ID", groupID), str("member ID", memberID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointGroupMember(groupID, memberID), nil)
}

// AwardServerMember 为成员增加经验，返回新的总经验
func (c *Client) AwardServerMember(ctx context.Context, serverID, memberID string, amount int) (int, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID), num("amount", amount)); err != nil {
		return 0, err
	}
	total, err := call[int](c, ctx, http.MethodPost, EndpointServerMemberXP(serverID, memberID), "total", map[string]int{"amount": amount}, nil)
	if err != nil {
		return 0, err
	}
	return *total, nil
}

// SetServerMemberXP 设置成员总经验
func (c *Client) SetServerMemberXP(ctx context.Context, serverID, memberID string, total int) (int, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID)); err != nil {
		return 0, err
	}
	v, err := call[int](c, ctx, http.MethodPut, EndpointServerMemberXP(serverID, memberID), "total", map[string]int{"total": total}, nil)
	if err != nil {
		return 0, err
	}
	return *v, nil
}

// AwardServerRole 为角色下的所有成员增加经验
func (c *Client) AwardServerRole(ctx context.Context, serverID string, roleID, amount int) error {
	if err := require(str("server ID", serverID), num("role ID", roleID), num("amount", amount)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodPost, EndpointServerRoleXP(serverID, roleID), map[string]int{"amount": amount})
}

// GetServerMemberSocialLink 获取成员社交账号
func (c *Client) GetServerMemberSocialLink(ctx context.Context, serverID, memberID, socialType string) (*SocialLink, error) {
	if err := require(str("server ID", serverID), str("member ID", memberID), str("social media name", socialType)); err != nil {
		return nil, err
	}
	return call[SocialLink](c, ctx, http.MethodGet, EndpointServerMemberSocialLink(serverID, memberID, socialType), "socialLink", nil, nil)
}

// CreateServerWebhook 创建 webhook
func (c *Client) CreateServerWebhook(ctx context.Context, serverID string, opts WebhookOptions) (*structures.Webhook, error) {
	if err := require(str("server ID", serverID), str("name", opts.Name)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawWebhook](c, ctx, http.MethodPost, EndpointServerWebhooks(serverID), "webhook", opts, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewWebhook(*raw, c), nil
}

// GetServerWebhook 获取 webhook
func (c *Client) GetServerWebhook(ctx context.Context, serverID, webhookID string) (*structures.Webhook, error) {
	if err := require(str("server ID", serverID), str("webhook ID", webhookID)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawWebhook](c, ctx, http.MethodGet, EndpointServerWebhook(serverID, webhookID), "webhook", nil, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewWebhook(*raw, c), nil
}

// GetServerWebhooks 获取服务器 webhook 列表
func (c *Client) GetServerWebhooks(ctx context.Context, serverID string, filter *WebhookFilter) ([]*structures.Webhook, error) {
	if err := require(str("server ID", serverID)); err != nil {
		return nil, err
	}
	raws, err := call[[]structures.RawWebhook](c, ctx, http.MethodGet, EndpointServerWebhooks(serverID), "webhooks", nil, filter.params())
	if err != nil {
		return nil, err
	}
	return each(*raws, func(raw structures.RawWebhook) *structures.Webhook {
		return structures.NewWebhook(raw, c)
	}), nil
}

// EditServerWebhook 修改 webhook
func (c *Client) EditServerWebhook(ctx context.Context, serverID, webhookID string, opts WebhookOptions) (*structures.Webhook, error) {
	if err := require(str("server ID", serverID), str("webhook ID", webhookID), str("name", opts.Name)); err != nil {
		return nil, err
	}
	raw, err := call[structures.RawWebhook](c, ctx, http.MethodPut, EndpointServerWebhook(serverID, webhookID), "webhook", opts, nil)
	if err != nil {
		return nil, err
	}
	return structures.NewWebhook(*raw, c), nil
}

// DeleteServerWebhook 删除 webhook
func (c *Client) DeleteServerWebhook(ctx context.Context, serverID, webhookID string) error {
	if err := require(str("server ID", serverID), str("webhook ID", webhookID)); err != nil {
		return err
	}
	return c.exec(ctx, http.MethodDelete, EndpointServerWebhook(serverID, webhookID), nil)
}
