package structures

import (
	"time"

	"github.com/tokmz/guilded/pkg/cache"
	"github.com/tokmz/guilded/utils/pointer"
)

// CalendarEvent 日程，持有回复集合
type CalendarEvent struct {
	ID           int
	ServerID     string
	ChannelID    string
	Name         string
	Description  string
	Location     string
	URL          string
	Color        int
	RSVPLimit    int
	StartsAt     time.Time
	Duration     time.Duration
	IsPrivate    bool
	Mentions     *Mentions
	CreatedAt    time.Time
	CreatedBy    string
	Cancellation *Cancellation

	client Client
	rsvps  *cache.TypedCollection[string, RawCalendarEventRSVP, *CalendarEventRSVP]
}

// NewCalendarEvent 构建日程，extra 可携带 Client
func NewCalendarEvent(raw RawCalendarEvent, extra ...any) *CalendarEvent {
	c := clientArg(extra)
	e := &CalendarEvent{client: c}
	e.Merge(raw)
	e.rsvps = cache.NewTypedCollection[string, RawCalendarEventRSVP, *CalendarEventRSVP](
		NewCalendarEventRSVP, limitsOf(c).ScheduledEventsRSVPs, c,
	)
	return e
}

func (e *CalendarEvent) Key() int { return e.ID }

// Clone 浅拷贝，子集合与原实例共享
func (e *CalendarEvent) Clone() *CalendarEvent {
	c := *e
	return &c
}

// Merge 合并存在的字段，duration 单位为分钟
func (e *CalendarEvent) Merge(raw RawCalendarEvent) {
	pointer.Assign(&e.ID, raw.ID)
	pointer.Assign(&e.ServerID, raw.ServerID)
	pointer.Assign(&e.ChannelID, raw.ChannelID)
	pointer.Assign(&e.Name, raw.Name)
	pointer.Assign(&e.Description, raw.Description)
	pointer.Assign(&e.Location, raw.Location)
	pointer.Assign(&e.URL, raw.URL)
	pointer.Assign(&e.Color, raw.Color)
	pointer.Assign(&e.RSVPLimit, raw.RSVPLimit)
	pointer.Assign(&e.StartsAt, raw.StartsAt)
	if raw.Duration != nil {
		e.Duration = time.Duration(*raw.Duration) * time.Minute
	}
	pointer.Assign(&e.IsPrivate, raw.IsPrivate)
	pointer.AssignPtr(&e.Mentions, raw.Mentions)
	pointer.Assign(&e.CreatedAt, raw.CreatedAt)
	pointer.Assign(&e.CreatedBy, raw.CreatedBy)
	pointer.AssignPtr(&e.Cancellation, raw.Cancellation)
}

// RSVPs 回复集合
func (e *CalendarEvent) RSVPs() *cache.TypedCollection[string, RawCalendarEventRSVP, *CalendarEventRSVP] {
	return e.rsvps
}

// EndsAt 结束时间
func (e *CalendarEvent) EndsAt() time.Time {
	return e.StartsAt.Add(e.Duration)
}

// Cancelled 是否已取消
func (e *CalendarEvent) Cancelled() bool { return e.Cancellation != nil }

// Channel 所属频道（已缓存时）
func (e *CalendarEvent) Channel() (*Channel, bool) {
	return lookupChannel(e.client, e.ServerID, e.ChannelID)
}

// CalendarEventRSVP 日程回复，以用户 id 为键
type CalendarEventRSVP struct {
	CalendarEventID int
	ChannelID       string
	ServerID        string
	UserID          string
	Status          RSVPStatus
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedBy       string
	UpdatedAt       time.Time

	client Client
}

// NewCalendarEventRSVP 构建回复，extra 可携带 Client
func NewCalendarEventRSVP(raw RawCalendarEventRSVP, extra ...any) *CalendarEventRSVP {
	r := &CalendarEventRSVP{client: clientArg(extra)}
	r.Merge(raw)
	return r
}

func (r *CalendarEventRSVP) Key() string { return r.UserID }

func (r *CalendarEventRSVP) Clone() *CalendarEventRSVP {
	c := *r
	return &c
}

// Merge 合并存在的字段
func (r *CalendarEventRSVP) Merge(raw RawCalendarEventRSVP) {
	pointer.Assign(&r.CalendarEventID, raw.CalendarEventID)
	pointer.Assign(&r.ChannelID, raw.ChannelID)
	pointer.Assign(&r.ServerID, raw.ServerID)
	pointer.Assign(&r.UserID, raw.UserID)
	pointer.Assign(&r.Status, raw.Status)
	pointer.Assign(&r.CreatedBy, raw.CreatedBy)
	pointer.Assign(&r.CreatedAt, raw.CreatedAt)
	pointer.Assign(&r.UpdatedBy, raw.UpdatedBy)
	pointer.Assign(&r.UpdatedAt, raw.UpdatedAt)
}

// Event 所属日程（已缓存时）
func (r *CalendarEventRSVP) Event() (*CalendarEvent, bool) {
	ch, ok := lookupChannel(r.client, r.ServerID, r.ChannelID)
	if !ok || ch.CalendarEvents() == nil {
		return nil, false
	}
	return ch.CalendarEvents().Get(r.CalendarEventID)
}
