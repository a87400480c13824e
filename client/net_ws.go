package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"bubblearena/internal/errors"
)

const (
	dialTimeout  = 10 * time.Second
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 10 * time.Second
	sendQueue    = 256
)

// WSTransport 基于 gorilla/websocket 的客户端连接，帧为二进制 msgpack
type WSTransport struct {
	dialer *websocket.Dialer
	events TransportEvents

	mu      sync.Mutex
	gen     uint64 // 每次 Connect/Close 递增，旧协程据此判断自己已过期
	dialing bool
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}

	connected atomic.Bool
}

// NewWSTransport 创建连接；events 接收打开、收帧、断开事件
func NewWSTransport(events TransportEvents) *WSTransport {
	return &WSTransport{
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		events: events,
	}
}

// Connect 后台拨号；已连接或正在拨号时忽略
func (t *WSTransport) Connect(url string) {
	t.mu.Lock()
	if t.conn != nil || t.dialing {
		t.mu.Unlock()
		return
	}
	t.gen++
	t.dialing = true
	gen := t.gen
	t.mu.Unlock()

	go t.dial(url, gen)
}

func (t *WSTransport) dial(url string, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	conn, _, err := t.dialer.DialContext(ctx, url, nil)

	t.mu.Lock()
	if gen != t.gen {
		// 拨号期间被 Close 了
		t.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	t.dialing = false
	if err != nil {
		t.mu.Unlock()
		Log.Warnf("dial %s: %v", url, err)
		t.events.OnClose(errors.WrapWithCode(err, errors.CodeUnavailable, "dial "+url))
		return
	}
	send := make(chan []byte, sendQueue)
	done := make(chan struct{})
	t.conn, t.send, t.done = conn, send, done
	t.connected.Store(true)
	t.mu.Unlock()

	Log.Infof("connected to %s", url)
	go t.writePump(conn, send, done)
	if !t.current(gen) {
		// 解锁后到此处之间被 Close；writePump 见 done 已关闭会关掉 conn
		return
	}
	t.events.OnOpen()
	go t.readPump(conn, gen)
}

// current gen 是否仍是最新一次连接
func (t *WSTransport) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}

// IsConnected 当前是否持有可用连接
func (t *WSTransport) IsConnected() bool {
	return t.connected.Load()
}

// Send 将一帧压入发送队列（非阻塞，满则丢弃，避免阻塞 Tick）
func (t *WSTransport) Send(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.send == nil {
		return
	}
	select {
	case t.send <- b:
	default:
		Log.Warnf("send queue full, dropping %d bytes", len(b))
	}
}

// Close 主动断开；可重复调用。主动断开不会触发 OnClose
func (t *WSTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.dialing = false
	t.release()
}

// release 需持有 mu
func (t *WSTransport) release() {
	if t.conn == nil {
		return
	}
	close(t.done)
	t.conn, t.send, t.done = nil, nil, nil
	t.connected.Store(false)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时发送 ping
func (t *WSTransport) writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				Log.Warnf("write: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump 读取服务端消息并交给 events；连接异常断开时通知 OnClose
func (t *WSTransport) readPump(conn *websocket.Conn, gen uint64) {
	conn.SetReadLimit(1 << 20) // 1MB
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			stale := gen != t.gen
			if !stale {
				t.release()
			}
			t.mu.Unlock()
			_ = conn.Close()
			if stale {
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Warnf("connection lost: %v", err)
			} else {
				Log.Infof("connection closed: %v", err)
			}
			t.events.OnClose(err)
			return
		}
		t.events.OnFrame(payload)
	}
}
