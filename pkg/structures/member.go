package structures

import (
	"time"

	"github.com/tokmz/guilded/utils/pointer"
)

// ServerMember 服务器成员，以用户 id 为键
type ServerMember struct {
	ID       string
	ServerID string
	Name     string
	Type     string
	Avatar   string
	RoleIDs  []int
	Nickname string
	JoinedAt time.Time
	IsOwner  bool

	client Client
	user   RawUser
}

// NewServerMember 构建成员，extra 可携带 Client 与所属服务器 id
func NewServerMember(raw RawServerMember, extra ...any) *ServerMember {
	m := &ServerMember{
		client:   clientArg(extra),
		ServerID: stringArg(extra),
	}
	m.Merge(raw)
	return m
}

func (m *ServerMember) Key() string { return m.ID }

func (m *ServerMember) Clone() *ServerMember {
	c := *m
	return &c
}

// Merge 合并存在的字段
func (m *ServerMember) Merge(raw RawServerMember) {
	if raw.User != nil {
		pointer.Assign(&m.ID, raw.User.ID)
		pointer.Assign(&m.Name, raw.User.Name)
		pointer.Assign(&m.Type, raw.User.Type)
		pointer.Assign(&m.Avatar, raw.User.Avatar)
		mergeRawUser(&m.user, *raw.User)
	}
	pointer.AssignSlice(&m.RoleIDs, raw.RoleIDs)
	pointer.Assign(&m.Nickname, raw.Nickname)
	pointer.Assign(&m.JoinedAt, raw.JoinedAt)
	pointer.Assign(&m.IsOwner, raw.IsOwner)
}

// DisplayName 昵称优先
func (m *ServerMember) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Name
}

// HasRole 是否拥有角色
func (m *ServerMember) HasRole(roleID int) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Server 所属服务器（已缓存时）
func (m *ServerMember) Server() (*Server, bool) {
	return lookupServer(m.client, m.ServerID)
}

// User 对应的用户，同时合并到根用户集合
func (m *ServerMember) User() *User {
	if m.client == nil {
		return NewUser(m.user)
	}
	return m.client.UpdateUser(m.user)
}

func mergeRawUser(dst *RawUser, src RawUser) {
	pointer.AssignPtr(&dst.ID, src.ID)
	pointer.AssignPtr(&dst.Type, src.Type)
	pointer.AssignPtr(&dst.Name, src.Name)
	pointer.AssignPtr(&dst.Avatar, src.Avatar)
	pointer.AssignPtr(&dst.Banner, src.Banner)
	pointer.AssignPtr(&dst.CreatedAt, src.CreatedAt)
}

// ServerMemberBan 服务器封禁
type ServerMemberBan struct {
	ID        string
	ServerID  string
	Name      string
	Reason    string
	CreatedBy string
	CreatedAt time.Time

	client Client
}

// NewServerMemberBan 构建封禁，extra 可携带 Client 与所属服务器 id
func NewServerMemberBan(raw RawServerMemberBan, extra ...any) *ServerMemberBan {
	b := &ServerMemberBan{
		client:   clientArg(extra),
		ServerID: stringArg(extra),
	}
	b.Merge(raw)
	return b
}

func (b *ServerMemberBan) Key() string { return b.ID }

// Merge 合并存在的字段
func (b *ServerMemberBan) Merge(raw RawServerMemberBan) {
	if raw.User != nil {
		pointer.Assign(&b.ID, raw.User.ID)
		pointer.Assign(&b.Name, raw.User.Name)
	}
	pointer.Assign(&b.Reason, raw.Reason)
	pointer.Assign(&b.CreatedBy, raw.CreatedBy)
	pointer.Assign(&b.CreatedAt, raw.CreatedAt)
}

// Server 所属服务器（已缓存时）
func (b *ServerMemberBan) Server() (*Server, bool) {
	return lookupServer(b.client, b.ServerID)
}

// MemberRemoveInfo 成员离开/被踢/被封
type MemberRemoveInfo struct {
	ServerID string
	UserID   string
	IsKick   bool
	IsBan    bool
}

// MemberUpdateInfo 成员资料或角色变更
type MemberUpdateInfo struct {
	ServerID string
	UserID   string
	// Nickname 为 nil 表示未变更
	Nickname *string
	// Roles 角色更新事件中每个成员的新角色
	Roles map[string][]int
}

// Member 已缓存时返回成员实体
func (i *MemberUpdateInfo) Member(c Client) (*ServerMember, bool) {
	server, ok := lookupServer(c, i.ServerID)
	if !ok {
		return nil, false
	}
	return server.Members().Get(i.UserID)
}
