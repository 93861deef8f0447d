package structures

import (
	"time"

	"github.com/tokmz/guilded/utils/pointer"
)

// Doc 文档
type Doc struct {
	ID        int
	ServerID  string
	ChannelID string
	Title     string
	Content   string
	Mentions  *Mentions
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string

	client Client
}

// NewDoc 构建文档，extra 可携带 Client
func NewDoc(raw RawDoc, extra ...any) *Doc {
	d := &Doc{client: clientArg(extra)}
	d.Merge(raw)
	return d
}

func (d *Doc) Key() int { return d.ID }

func (d *Doc) Clone() *Doc {
	c := *d
	return &c
}

// Merge 合并存在的字段
func (d *Doc) Merge(raw RawDoc) {
	pointer.Assign(&d.ID, raw.ID)
	pointer.Assign(&d.ServerID, raw.ServerID)
	pointer.Assign(&d.ChannelID, raw.ChannelID)
	pointer.Assign(&d.Title, raw.Title)
	pointer.Assign(&d.Content, raw.Content)
	pointer.AssignPtr(&d.Mentions, raw.Mentions)
	pointer.Assign(&d.CreatedAt, raw.CreatedAt)
	pointer.Assign(&d.CreatedBy, raw.CreatedBy)
	pointer.Assign(&d.UpdatedAt, raw.UpdatedAt)
	pointer.Assign(&d.UpdatedBy, raw.UpdatedBy)
}

// Channel 所属频道（已缓存时）
func (d *Doc) Channel() (*Channel, bool) {
	return lookupChannel(d.client, d.ServerID, d.ChannelID)
}
