package structures

import (
	"sync"
	"time"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/utils/pointer"
)

// Server 服务器，持有频道与成员集合
type Server struct {
	ID               string
	OwnerID          string
	Type             string
	Name             string
	URL              string
	About            string
	Avatar           string
	Banner           string
	Timezone         string
	IsVerified       bool
	DefaultChannelID string
	CreatedAt        time.Time

	client   Client
	channels *cache.TypedCollection[string, RawServerChannel, *Channel]
	members  *cache.TypedCollection[string, RawServerMember, *ServerMember]

	mu   sync.RWMutex
	self *ServerMember
}

// NewServer 构建服务器，extra 可携带 Client
func NewServer(raw RawServer, extra ...any) *Server {
	c := clientArg(extra)
	s := &Server{client: c}
	s.Merge(raw)
	s.channels = cache.NewTypedCollection[string, RawServerChannel, *Channel](NewChannel, cache.Unlimited, c)
	s.members = cache.NewTypedCollection[string, RawServerMember, *ServerMember](NewServerMember, cache.Unlimited, c, s.ID)
	return s
}

func (s *Server) Key() string { return s.ID }

// Clone 浅拷贝，频道与成员集合与原实例共享
func (s *Server) Clone() *Server {
	s.mu.RLock()
	self := s.self
	s.mu.RUnlock()
	return &Server{
		ID:               s.ID,
		OwnerID:          s.OwnerID,
		Type:             s.Type,
		Name:             s.Name,
		URL:              s.URL,
		About:            s.About,
		Avatar:           s.Avatar,
		Banner:           s.Banner,
		Timezone:         s.Timezone,
		IsVerified:       s.IsVerified,
		DefaultChannelID: s.DefaultChannelID,
		CreatedAt:        s.CreatedAt,
		client:           s.client,
		channels:         s.channels,
		members:          s.members,
		self:             self,
	}
}

// Merge 合并存在的字段
func (s *Server) Merge(raw RawServer) {
	pointer.Assign(&s.ID, raw.ID)
	pointer.Assign(&s.OwnerID, raw.OwnerID)
	pointer.Assign(&s.Type, raw.Type)
	pointer.Assign(&s.Name, raw.Name)
	pointer.Assign(&s.URL, raw.URL)
	pointer.Assign(&s.About, raw.About)
	pointer.Assign(&s.Avatar, raw.Avatar)
	pointer.Assign(&s.Banner, raw.Banner)
	pointer.Assign(&s.Timezone, raw.Timezone)
	pointer.Assign(&s.IsVerified, raw.IsVerified)
	pointer.Assign(&s.DefaultChannelID, raw.DefaultChannelID)
	pointer.Assign(&s.CreatedAt, raw.CreatedAt)
}

// Channels 频道集合
func (s *Server) Channels() *cache.TypedCollection[string, RawServerChannel, *Channel] {
	return s.channels
}

// Members 成员集合
func (s *Server) Members() *cache.TypedCollection[string, RawServerMember, *ServerMember] {
	return s.members
}

// Owner 服务器所有者（已缓存时）
func (s *Server) Owner() (*ServerMember, bool) {
	return s.members.Get(s.OwnerID)
}

// DefaultChannel 默认频道（已缓存时）
func (s *Server) DefaultChannel() (*Channel, bool) {
	if s.DefaultChannelID == "" {
		return nil, false
	}
	return s.channels.Get(s.DefaultChannelID)
}

// Self 机器人在该服务器中的成员信息
func (s *Server) Self() (*ServerMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.self, s.self != nil
}

// UpdateSelf 合并机器人自己的成员数据，首次时插入成员集合
func (s *Server) UpdateSelf(raw RawServerMember) *ServerMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self != nil {
		return s.members.UpdateEntity(s.self, raw)
	}
	s.self = s.members.Update(raw)
	return s.self
}
