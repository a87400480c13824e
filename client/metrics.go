package client

import (
	"sync/atomic"
)

// ClientMetrics 记录客户端运行期的关键指标（用于监控与调试）
type ClientMetrics struct {
	TickCount         int64 // Tick 次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
	InputsAccepted    int64 // 进入收件箱的按键事件
	InputsDropped     int64 // 收件箱满被丢弃的按键事件
	FramesReceived    int64 // 收到的网络帧
	FramesSent        int64 // 发出的网络帧
	DecodeErrors      int64 // 无法解码的帧
	StepsCommitted    int64 // 成功提交的移动子步
	StepsBlocked      int64 // 被地图阻挡而终止的 Tick
	HandshakeRetries  int64 // 等待 Welcome 超时后的重连次数
	UnexpectedMessage int64 // 当前状态下不期望的消息
}

func (m *ClientMetrics) IncAccepted()     { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *ClientMetrics) IncDropped()      { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *ClientMetrics) IncReceived()     { atomic.AddInt64(&m.FramesReceived, 1) }
func (m *ClientMetrics) IncSent()         { atomic.AddInt64(&m.FramesSent, 1) }
func (m *ClientMetrics) IncDecodeErrors() { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *ClientMetrics) IncBlocked()      { atomic.AddInt64(&m.StepsBlocked, 1) }
func (m *ClientMetrics) IncRetries()      { atomic.AddInt64(&m.HandshakeRetries, 1) }
func (m *ClientMetrics) IncUnexpected()   { atomic.AddInt64(&m.UnexpectedMessage, 1) }
func (m *ClientMetrics) AddSteps(n int)   { atomic.AddInt64(&m.StepsCommitted, int64(n)) }
func (m *ClientMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *ClientMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":         tick,
		"avg_tick_ms":        avgMs,
		"inputs_accepted":    atomic.LoadInt64(&m.InputsAccepted),
		"inputs_dropped":     atomic.LoadInt64(&m.InputsDropped),
		"frames_received":    atomic.LoadInt64(&m.FramesReceived),
		"frames_sent":        atomic.LoadInt64(&m.FramesSent),
		"decode_errors":      atomic.LoadInt64(&m.DecodeErrors),
		"steps_committed":    atomic.LoadInt64(&m.StepsCommitted),
		"steps_blocked":      atomic.LoadInt64(&m.StepsBlocked),
		"handshake_retries":  atomic.LoadInt64(&m.HandshakeRetries),
		"unexpected_message": atomic.LoadInt64(&m.UnexpectedMessage),
	}
}
