package guilded

import "time"

// Stats 客户端运行状态快照
type Stats struct {
	UserID            string        `json:"userId,omitempty"`
	GatewayState      string        `json:"gatewayState"`
	Uptime            time.Duration `json:"uptime"`
	Ping              time.Duration `json:"ping"`
	RESTLatency       time.Duration `json:"restLatency"`
	GlobalBlocked     bool          `json:"globalBlocked"`
	LastMessageID     string        `json:"lastMessageId,omitempty"`
	Servers           int           `json:"servers"`
	Users             int           `json:"users"`
	DroppedEvents     int64         `json:"droppedEvents"`
	ReconnectAttempts int           `json:"reconnectAttempts"`
}

// Stats 当前运行状态
func (c *Client) Stats() Stats {
	s := Stats{
		UserID:            c.SelfID(),
		GatewayState:      c.socket.State().String(),
		Uptime:            c.Uptime(),
		Ping:              c.socket.Latency(),
		LastMessageID:     c.socket.LastMessageID(),
		Servers:           c.servers.Len(),
		Users:             c.users.Len(),
		DroppedEvents:     c.bus.Dropped(),
		ReconnectAttempts: c.socket.Attempt(),
	}
	if c.rest != nil {
		s.RESTLatency = c.rest.Latency().Latency()
		s.GlobalBlocked = c.rest.GlobalBlocked()
	}
	return s
}

// Healthy 网关连接存活时返回 nil
func (c *Client) Healthy() error {
	if !c.socket.Connected() {
		return ErrNotConnected
	}
	return nil
}
