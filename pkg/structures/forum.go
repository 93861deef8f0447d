package structures

import (
	"time"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/utils/pointer"
)

// ForumTopic 论坛主题，持有评论集合
type ForumTopic struct {
	ID                 int
	ServerID           string
	ChannelID          string
	Title              string
	Content            string
	Mentions           *Mentions
	CreatedAt          time.Time
	CreatedBy          string
	CreatedByWebhookID string
	UpdatedAt          time.Time
	BumpedAt           time.Time
	IsPinned           bool
	IsLocked           bool

	client   Client
	comments *cache.TypedCollection[int, RawForumTopicComment, *ForumTopicComment]
}

// NewForumTopic 构建主题，extra 可携带 Client
func NewForumTopic(raw RawForumTopic, extra ...any) *ForumTopic {
	c := clientArg(extra)
	t := &ForumTopic{client: c}
	t.Merge(raw)
	t.comments = cache.NewTypedCollection[int, RawForumTopicComment, *ForumTopicComment](
		NewForumTopicComment, limitsOf(c).TopicComments, c, t.ServerID,
	)
	return t
}

func (t *ForumTopic) Key() int { return t.ID }

// Clone 浅拷贝，子集合与原实例共享
func (t *ForumTopic) Clone() *ForumTopic {
	c := *t
	return &c
}

// Merge 合并存在的字段
func (t *ForumTopic) Merge(raw RawForumTopic) {
	pointer.Assign(&t.ID, raw.ID)
	pointer.Assign(&t.ServerID, raw.ServerID)
	pointer.Assign(&t.ChannelID, raw.ChannelID)
	pointer.Assign(&t.Title, raw.Title)
	pointer.Assign(&t.Content, raw.Content)
	pointer.AssignPtr(&t.Mentions, raw.Mentions)
	pointer.Assign(&t.CreatedAt, raw.CreatedAt)
	pointer.Assign(&t.CreatedBy, raw.CreatedBy)
	pointer.Assign(&t.CreatedByWebhookID, raw.CreatedByWebhookID)
	pointer.Assign(&t.UpdatedAt, raw.UpdatedAt)
	pointer.Assign(&t.BumpedAt, raw.BumpedAt)
	pointer.Assign(&t.IsPinned, raw.IsPinned)
	pointer.Assign(&t.IsLocked, raw.IsLocked)
}

// Comments 评论集合
func (t *ForumTopic) Comments() *cache.TypedCollection[int, RawForumTopicComment, *ForumTopicComment] {
	return t.comments
}

// Channel 所属频道（已缓存时）
func (t *ForumTopic) Channel() (*Channel, bool) {
	return lookupChannel(t.client, t.ServerID, t.ChannelID)
}

// ForumTopicComment 论坛主题评论
type ForumTopicComment struct {
	ID           int
	ForumTopicID int
	ServerID     string
	ChannelID    string
	Content      string
	Mentions     *Mentions
	CreatedAt    time.Time
	CreatedBy    string
	UpdatedAt    time.Time

	client Client
}

// NewForumTopicComment 构建评论，extra 可携带 Client 与服务器 id
func NewForumTopicComment(raw RawForumTopicComment, extra ...any) *ForumTopicComment {
	cm := &ForumTopicComment{client: clientArg(extra), ServerID: stringArg(extra)}
	cm.Merge(raw)
	return cm
}

func (cm *ForumTopicComment) Key() int { return cm.ID }

func (cm *ForumTopicComment) Clone() *ForumTopicComment {
	c := *cm
	return &c
}

// Merge 合并存在的字段
func (cm *ForumTopicComment) Merge(raw RawForumTopicComment) {
	pointer.Assign(&cm.ID, raw.ID)
	pointer.Assign(&cm.ForumTopicID, raw.ForumTopicID)
	pointer.Assign(&cm.ChannelID, raw.ChannelID)
	pointer.Assign(&cm.Content, raw.Content)
	pointer.AssignPtr(&cm.Mentions, raw.Mentions)
	pointer.Assign(&cm.CreatedAt, raw.CreatedAt)
	pointer.Assign(&cm.CreatedBy, raw.CreatedBy)
	pointer.Assign(&cm.UpdatedAt, raw.UpdatedAt)
}

// Topic 所属主题（已缓存时）
func (cm *ForumTopicComment) Topic() (*ForumTopic, bool) {
	ch, ok := lookupChannel(cm.client, cm.ServerID, cm.ChannelID)
	if !ok || ch.Topics() == nil {
		return nil, false
	}
	return ch.Topics().Get(cm.ForumTopicID)
}
