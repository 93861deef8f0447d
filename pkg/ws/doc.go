// Package ws 实现网关长连接的状态机。
//
// Socket 负责握手认证、心跳、帧解码（JSON / CBOR，可选 zlib 流压缩）、
// 续传（guilded-last-message-id）以及带抖动的退避重连。连接事件通过
// On 订阅，处理器在读协程中按到达顺序同步执行：
//
//	s, _ := ws.New(ws.WithToken(token))
//	s.On(ws.EventDispatch, func(e event.Event) {
//	    p := e.Data.(*ws.Packet)
//	    // p.T 事件类型，p.D.Decode(&payload) 解析数据
//	})
//	_ = s.Connect(ctx)
package ws
