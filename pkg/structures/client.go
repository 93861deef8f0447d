package structures

// Client 实体通过它解析跨树引用（服务器、用户）并读取集合上限
// 由根客户端实现；为 nil 时所有解析都返回未命中
type Client interface {
	// LookupServer 从根集合获取服务器
	LookupServer(id string) (*Server, bool)
	// LookupUser 从根集合获取用户
	LookupUser(id string) (*User, bool)
	// UpdateUser 合并用户到根集合
	UpdateUser(raw RawUser) *User
	// SelfID 当前机器人用户 id，未就绪时为空
	SelfID() string
	// Limits 子集合上限
	Limits() Limits
}

// Limits 嵌套集合的上限
type Limits struct {
	Docs                 int
	Messages             int
	ScheduledEvents      int
	ScheduledEventsRSVPs int
	TopicComments        int
	Topics               int
}

// DefaultLimits 默认每个子集合保留 100 个实体
func DefaultLimits() Limits {
	return Limits{
		Docs:                 100,
		Messages:             100,
		ScheduledEvents:      100,
		ScheduledEventsRSVPs: 100,
		TopicComments:        100,
		Topics:               100,
	}
}

func limitsOf(c Client) Limits {
	if c == nil {
		return DefaultLimits()
	}
	return c.Limits()
}

func lookupServer(c Client, id string) (*Server, bool) {
	if c == nil || id == "" {
		return nil, false
	}
	return c.LookupServer(id)
}

func lookupChannel(c Client, serverID, channelID string) (*Channel, bool) {
	server, ok := lookupServer(c, serverID)
	if !ok {
		return nil, false
	}
	return server.Channels().Get(channelID)
}

func lookupUser(c Client, id string) (*User, bool) {
	if c == nil || id == "" {
		return nil, false
	}
	return c.LookupUser(id)
}

// arg 取 extra 中第一个类型为 T 的参数
func arg[T any](extra []any) (T, bool) {
	for _, v := range extra {
		if t, ok := v.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

func clientArg(extra []any) Client {
	c, _ := arg[Client](extra)
	return c
}

func stringArg(extra []any) string {
	s, _ := arg[string](extra)
	return s
}
