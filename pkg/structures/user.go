package structures

import (
	"time"

	"github.com/tokmz/guilded/utils/pointer"
)

// UserType 用户类型
const (
	UserTypeBot  = "bot"
	UserTypeUser = "user"
)

// User 用户
type User struct {
	ID        string
	Type      string
	Name      string
	Avatar    string
	Banner    string
	CreatedAt time.Time

	client Client
}

// NewUser 构建用户，extra 可携带 Client
func NewUser(raw RawUser, extra ...any) *User {
	u := &User{Type: UserTypeUser, client: clientArg(extra)}
	u.Merge(raw)
	return u
}

func (u *User) Key() string { return u.ID }

func (u *User) Clone() *User {
	c := *u
	return &c
}

// Merge 合并存在的字段
func (u *User) Merge(raw RawUser) {
	pointer.Assign(&u.ID, raw.ID)
	pointer.Assign(&u.Type, raw.Type)
	pointer.Assign(&u.Name, raw.Name)
	pointer.Assign(&u.Avatar, raw.Avatar)
	pointer.Assign(&u.Banner, raw.Banner)
	pointer.Assign(&u.CreatedAt, raw.CreatedAt)
}

// IsBot 是否为机器人
func (u *User) IsBot() bool { return u.Type == UserTypeBot }

// ClientUser 当前登录的机器人用户
type ClientUser struct {
	User
	BotID     string
	CreatedBy string
}

// NewClientUser 由欢迎包构建
func NewClientUser(raw RawClientUser, c Client) *ClientUser {
	u := &ClientUser{
		User: User{
			ID:     raw.ID,
			Type:   UserTypeBot,
			Name:   raw.Name,
			client: c,
		},
		BotID:     raw.BotID,
		CreatedBy: raw.CreatedBy,
	}
	pointer.Assign(&u.CreatedAt, raw.CreatedAt)
	return u
}
