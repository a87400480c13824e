package client

import (
	"time"

	"bubblearena/internal/clock"
	"bubblearena/internal/errors"
	"bubblearena/protocol"
)

// RoomConfig RoomController 的依赖
type RoomConfig struct {
	URL            string
	Name           string
	Transport      Transport
	Clock          clock.Clock
	WelcomeTimeout time.Duration // 等待 Welcome 与断线重连的间隔，0 表示不重试
	Metrics        *ClientMetrics
	Observer       RosterObserver
}

// RoomController 连接与入房握手：
// Disconnected → Connecting → AwaitingWelcome → Identified → InRoom
type RoomController struct {
	url            string
	name           string
	transport      Transport
	clock          clock.Clock
	welcomeTimeout time.Duration
	metrics        *ClientMetrics
	observer       RosterObserver

	session *Session
	roster  []RoomMember
}

// NewRoomController 创建控制器
func NewRoomController(cfg *RoomConfig) (*RoomController, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.Transport == nil {
		return nil, errors.InvalidArgument("transport is required")
	}
	if cfg.URL == "" {
		return nil, errors.InvalidArgument("url is required")
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	m := cfg.Metrics
	if m == nil {
		m = &ClientMetrics{}
	}
	return &RoomController{
		url:            cfg.URL,
		name:           cfg.Name,
		transport:      cfg.Transport,
		clock:          c,
		welcomeTimeout: cfg.WelcomeTimeout,
		metrics:        m,
		observer:       cfg.Observer,
	}, nil
}

// Attach 建立会话；未连接时发起连接（不阻塞）
func (r *RoomController) Attach() {
	if r.session == nil {
		r.session = &Session{UserName: r.name}
	}
	if r.transport.IsConnected() {
		r.session.Connected = true
		if r.session.State < StateAwaitingWelcome {
			r.session.State = StateAwaitingWelcome
			r.session.connectedAt = r.clock.Now()
		}
		return
	}
	r.session.State = StateConnecting
	Log.Infof("connecting to %s", r.url)
	r.transport.Connect(r.url)
}

// Detach 无条件释放会话并断开连接
func (r *RoomController) Detach() {
	r.transport.Close()
	if r.session != nil {
		Log.Infof("session closed: uid=%s state=%s", r.session.UserID, r.session.State)
	}
	r.session = nil
	r.roster = nil
}

// OnOpen 连接建立，开始等待 Welcome；连接已被关闭时（过期事件）忽略
func (r *RoomController) OnOpen() {
	if r.session == nil {
		return
	}
	if !r.transport.IsConnected() {
		Log.Debugf("stale open ignored in state %s", r.session.State)
		return
	}
	r.session.Connected = true
	r.session.State = StateAwaitingWelcome
	r.session.connectedAt = r.clock.Now()
}

// OnClose 连接断开
func (r *RoomController) OnClose(err error) {
	if r.session == nil {
		return
	}
	if errors.IsUnavailable(err) {
		Log.Warnf("server %s unavailable: %v", r.url, err)
	} else {
		Log.Warnf("disconnected in state %s: %v", r.session.State, err)
	}
	r.session.Connected = false
	r.session.State = StateDisconnected
	r.session.disconnectedAt = r.clock.Now()
}

// HandleWelcome 记录 uid，随后发送 GotIt 与 JoinRoom，不等待确认
func (r *RoomController) HandleWelcome(msg protocol.Welcome) {
	if r.session == nil {
		Log.Debugf("Welcome without session, ignored")
		return
	}
	if r.session.State != StateAwaitingWelcome {
		r.metrics.IncUnexpected()
		Log.Debugf("Welcome in state %s", r.session.State)
	}
	r.session.UserID = msg.UID
	Log.Infof("welcome: uid=%s name=%s", msg.UID, r.session.UserName)

	r.Send(protocol.GotIt{Name: r.session.UserName})
	r.Send(protocol.JoinRoom{})
	r.session.State = StateIdentified
}

// HandleRoomInfoUpdate 同步房间成员；角色号按显示习惯 +1
func (r *RoomController) HandleRoomInfoUpdate(msg protocol.RoomInfoUpdate) {
	if r.session == nil {
		return
	}
	if r.session.State != StateIdentified && r.session.State != StateInRoom {
		r.metrics.IncUnexpected()
		Log.Debugf("RoomInfoUpdate in state %s", r.session.State)
	}

	members := make([]RoomMember, 0, len(msg.Users))
	for _, u := range msg.Users {
		m := RoomMember{UID: u.UID, Name: u.Name, DisplayRole: u.Role + 1}
		Log.Infof("room member: uid=%s name=%s role=%d", m.UID, m.Name, m.DisplayRole)
		members = append(members, m)
	}
	r.roster = members
	if r.session.Connected {
		r.session.State = StateInRoom
	}
	if r.observer != nil {
		r.observer.OnRoster(r.Roster())
	}
}

// ChangeRole 请求切换角色（线上角色号，从 0 开始）
func (r *RoomController) ChangeRole(role int) bool {
	if role < 0 {
		Log.Warnf("invalid role %d", role)
		return false
	}
	if !r.Send(protocol.UserChangeRole{Role: role}) {
		Log.Warnf("change role to %d dropped: not connected", role)
		return false
	}
	return true
}

// ChangeStats 上报准备状态
func (r *RoomController) ChangeStats(ready bool) bool {
	stats := 0
	if ready {
		stats = 1
	}
	if !r.Send(protocol.UserChangeStats{Ready: stats}) {
		Log.Warnf("change stats dropped: not connected")
		return false
	}
	return true
}

// CheckHandshake 每个 Tick 调用：
// 连接后超过 WelcomeTimeout 仍未收到 Welcome 时断开重连；
// 断线（含拨号失败）超过 WelcomeTimeout 后重新拨号
func (r *RoomController) CheckHandshake(now time.Time) {
	if r.session == nil || r.welcomeTimeout <= 0 {
		return
	}
	switch r.session.State {
	case StateAwaitingWelcome:
		if now.Sub(r.session.connectedAt) < r.welcomeTimeout {
			return
		}
		Log.Warnf("no Welcome within %s, reconnecting", r.welcomeTimeout)
		r.transport.Close()
	case StateDisconnected:
		if now.Sub(r.session.disconnectedAt) < r.welcomeTimeout {
			return
		}
		Log.Infof("reconnecting to %s", r.url)
	default:
		return
	}
	r.metrics.IncRetries()
	r.session.Connected = false
	r.session.State = StateConnecting
	r.transport.Connect(r.url)
}

// Send 编码并发送；未连接时丢弃并返回 false
func (r *RoomController) Send(msg protocol.Message) bool {
	if r.session == nil || !r.session.Connected {
		return false
	}
	b, err := protocol.Encode(msg)
	if err != nil {
		Log.Errorf("encode %s: %v", msg.Type(), err)
		return false
	}
	r.transport.Send(b)
	r.metrics.IncSent()
	return true
}

// Session 当前会话副本；未 Attach 时为零值
func (r *RoomController) Session() Session {
	if r.session == nil {
		return Session{}
	}
	return *r.session
}

// Roster 最近一次同步的房间成员
func (r *RoomController) Roster() []RoomMember {
	out := make([]RoomMember, len(r.roster))
	copy(out, r.roster)
	return out
}
