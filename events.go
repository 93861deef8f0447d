package guilded

// 客户端事件，领域事件名见 gateway 包
const (
	EventReady      = "ready"      // *structures.ClientUser
	EventError      = "error"      // error
	EventDebug      = "debug"      // string
	EventWarn       = "warn"       // string
	EventDisconnect = "disconnect" // error，可能为 nil
)
