package client

import "sync"

type eventKind int

const (
	evKey eventKind = iota
	evFrame
	evOpen
	evClose
	evCommand
)

type event struct {
	kind  eventKind
	key   KeyEvent
	frame []byte
	err   error
	fn    func()
}

// Inbox 网络协程、输入协程与 HTTP 协程向 Tick 协程投递事件的队列。
// 所有状态修改都在 Tick 中取出事件后执行。
type Inbox struct {
	ch      chan event
	stopped chan struct{}
	once    sync.Once
	metrics *ClientMetrics
}

// NewInbox 创建收件箱
func NewInbox(size int, m *ClientMetrics) *Inbox {
	if m == nil {
		m = &ClientMetrics{}
	}
	return &Inbox{
		ch:      make(chan event, size),
		stopped: make(chan struct{}),
		metrics: m,
	}
}

// OnInput 按键事件（非阻塞：拥塞时丢弃，保证 Tick 准时）
func (in *Inbox) OnInput(ev KeyEvent) bool {
	select {
	case in.ch <- event{kind: evKey, key: ev}:
		in.metrics.IncAccepted()
		return true
	default:
		in.metrics.IncDropped()
		return false
	}
}

// OnOpen 实现 TransportEvents
func (in *Inbox) OnOpen() { in.put(event{kind: evOpen}) }

// OnFrame 实现 TransportEvents
func (in *Inbox) OnFrame(b []byte) { in.put(event{kind: evFrame, frame: b}) }

// OnClose 实现 TransportEvents
func (in *Inbox) OnClose(err error) { in.put(event{kind: evClose, err: err}) }

// Command 在 Tick 协程中执行 fn；收件箱已停止时返回 false
func (in *Inbox) Command(fn func()) bool {
	return in.put(event{kind: evCommand, fn: fn})
}

// put 网络与控制事件不能丢：阻塞写入，直到 Tick 取走或收件箱停止
func (in *Inbox) put(ev event) bool {
	select {
	case <-in.stopped:
		return false
	default:
	}
	select {
	case in.ch <- ev:
		return true
	case <-in.stopped:
		return false
	}
}

// Stop 停止接收；阻塞中的投递方立即返回
func (in *Inbox) Stop() {
	in.once.Do(func() { close(in.stopped) })
}
