package structures

import (
	"time"

	"github.com/tokmz/guilded/utils/pointer"
)

// ListItem 列表项
type ListItem struct {
	ID                 string
	ServerID           string
	ChannelID          string
	Message            string
	Mentions           *Mentions
	CreatedAt          time.Time
	CreatedBy          string
	CreatedByWebhookID string
	UpdatedAt          time.Time
	UpdatedBy          string
	ParentListItemID   string
	CompletedAt        time.Time
	CompletedBy        string
	Note               *ListItemNote

	client Client
}

// NewListItem 构建列表项，extra 可携带 Client
func NewListItem(raw RawListItem, extra ...any) *ListItem {
	li := &ListItem{client: clientArg(extra)}
	li.Merge(raw)
	return li
}

func (li *ListItem) Key() string { return li.ID }

// Merge 合并存在的字段
func (li *ListItem) Merge(raw RawListItem) {
	pointer.Assign(&li.ID, raw.ID)
	pointer.Assign(&li.ServerID, raw.ServerID)
	pointer.Assign(&li.ChannelID, raw.ChannelID)
	pointer.Assign(&li.Message, raw.Message)
	pointer.AssignPtr(&li.Mentions, raw.Mentions)
	pointer.Assign(&li.CreatedAt, raw.CreatedAt)
	pointer.Assign(&li.CreatedBy, raw.CreatedBy)
	pointer.Assign(&li.CreatedByWebhookID, raw.CreatedByWebhookID)
	pointer.Assign(&li.UpdatedAt, raw.UpdatedAt)
	pointer.Assign(&li.UpdatedBy, raw.UpdatedBy)
	pointer.Assign(&li.ParentListItemID, raw.ParentListItemID)
	pointer.Assign(&li.CompletedAt, raw.CompletedAt)
	pointer.Assign(&li.CompletedBy, raw.CompletedBy)
	pointer.AssignPtr(&li.Note, raw.Note)
}

// Completed 是否已完成
func (li *ListItem) Completed() bool { return !li.CompletedAt.IsZero() }

// Channel 所属频道（已缓存时）
func (li *ListItem) Channel() (*Channel, bool) {
	return lookupChannel(li.client, li.ServerID, li.ChannelID)
}

// Webhook 服务器 webhook
type Webhook struct {
	ID        string
	ServerID  string
	ChannelID string
	Name      string
	CreatedAt time.Time
	CreatedBy string
	DeletedAt time.Time
	Token     string

	client Client
}

// NewWebhook 构建 webhook，extra 可携带 Client
func NewWebhook(raw RawWebhook, extra ...any) *Webhook {
	w := &Webhook{client: clientArg(extra)}
	w.Merge(raw)
	return w
}

func (w *Webhook) Key() string { return w.ID }

// Merge 合并存在的字段
func (w *Webhook) Merge(raw RawWebhook) {
	pointer.Assign(&w.ID, raw.ID)
	pointer.Assign(&w.ServerID, raw.ServerID)
	pointer.Assign(&w.ChannelID, raw.ChannelID)
	pointer.Assign(&w.Name, raw.Name)
	pointer.Assign(&w.CreatedAt, raw.CreatedAt)
	pointer.Assign(&w.CreatedBy, raw.CreatedBy)
	pointer.Assign(&w.DeletedAt, raw.DeletedAt)
	pointer.Assign(&w.Token, raw.Token)
}

// Channel 所属频道（已缓存时）
func (w *Webhook) Channel() (*Channel, bool) {
	return lookupChannel(w.client, w.ServerID, w.ChannelID)
}
