package client

//go:generate mockgen -destination=mocks/transport.go -package=clientmocks bubblearena/client Transport

// Transport 底层连接。所有方法都不阻塞调用方：
// Connect 在后台建立连接，结果通过 TransportEvents 异步通知；Send 只负责入队。
type Transport interface {
	Connect(url string)
	IsConnected() bool
	Send(b []byte)
	Close()
}

// TransportEvents 连接事件；实现方必须允许在任意协程中被调用
type TransportEvents interface {
	OnOpen()
	OnFrame(b []byte)
	OnClose(err error)
}
