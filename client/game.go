package client

import (
	"sync/atomic"
	"time"

	"bubblearena/game"
	"bubblearena/internal/clock"
	"bubblearena/internal/errors"
	"bubblearena/protocol"
)

// GameConfig Game 的依赖
type GameConfig struct {
	Inbox          *Inbox
	Transport      Transport
	Registry       *game.Registry
	Tiles          game.TileMap
	URL            string
	Name           string
	Clock          clock.Clock
	WelcomeTimeout time.Duration
	Metrics        *ClientMetrics
	Observer       RosterObserver
}

// Game 客户端世界：单线程 Tick 推进，收件箱是唯一的跨协程入口
type Game struct {
	inbox   *Inbox
	clock   clock.Clock
	metrics *ClientMetrics

	room    *RoomController
	players *PlayerController

	tickSeq  int64
	snapshot atomic.Pointer[Snapshot]
}

// NewGame 组装控制器
func NewGame(cfg *GameConfig) (*Game, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.Inbox == nil {
		return nil, errors.InvalidArgument("inbox is required")
	}
	if cfg.Registry == nil {
		return nil, errors.InvalidArgument("registry is required")
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	m := cfg.Metrics
	if m == nil {
		m = cfg.Inbox.metrics
	}

	room, err := NewRoomController(&RoomConfig{
		URL:            cfg.URL,
		Name:           cfg.Name,
		Transport:      cfg.Transport,
		Clock:          c,
		WelcomeTimeout: cfg.WelcomeTimeout,
		Metrics:        m,
		Observer:       cfg.Observer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "room controller")
	}

	g := &Game{
		inbox:   cfg.Inbox,
		clock:   c,
		metrics: m,
		room:    room,
		players: NewPlayerController(cfg.Registry, cfg.Tiles, room, m),
	}
	g.publish()
	return g, nil
}

// Room 握手控制器（仅限 Tick 协程使用）
func (g *Game) Room() *RoomController { return g.room }

// Players 玩家控制器（仅限 Tick 协程使用）
func (g *Game) Players() *PlayerController { return g.players }

// Metrics 运行指标
func (g *Game) Metrics() *ClientMetrics { return g.metrics }

// Snapshot 最近一次 Tick 发布的只读快照，可在任意协程调用
func (g *Game) Snapshot() *Snapshot {
	return g.snapshot.Load()
}

// Attach 建立会话并开始连接
func (g *Game) Attach() {
	g.room.Attach()
}

// Detach 停止收件箱并释放会话
func (g *Game) Detach() {
	g.inbox.Stop()
	g.room.Detach()
	g.publish()
}

// Tick 核心循环：处理收件箱 → 检查握手 → 移动本地玩家 → 发布快照
func (g *Game) Tick() {
	start := time.Now()
	g.tickSeq++
	g.ProcessInputs()
	g.room.CheckHandshake(g.clock.Now())
	g.players.Tick()
	g.publish()
	g.metrics.AddTick(time.Since(start).Nanoseconds())
}

// ProcessInputs 处理当前收件箱中的所有事件（非阻塞 drain）
func (g *Game) ProcessInputs() {
	for {
		select {
		case ev := <-g.inbox.ch:
			g.apply(ev)
		default:
			return
		}
	}
}

func (g *Game) apply(ev event) {
	switch ev.kind {
	case evKey:
		g.players.HandleKey(ev.key)
	case evOpen:
		g.room.OnOpen()
	case evClose:
		g.room.OnClose(ev.err)
	case evFrame:
		g.handleFrame(ev.frame)
	case evCommand:
		if ev.fn != nil {
			ev.fn()
		}
	}
}

func (g *Game) handleFrame(frame []byte) {
	g.metrics.IncReceived()
	msg, err := protocol.Decode(frame)
	if err != nil {
		g.metrics.IncDecodeErrors()
		Log.Warnf("drop frame: %v", err)
		return
	}
	if err := protocol.Dispatch(msg, g); err != nil {
		Log.Warnf("dispatch %s: %v", msg.Type(), err)
	}
}

func (g *Game) HandleWelcome(m protocol.Welcome)               { g.room.HandleWelcome(m) }
func (g *Game) HandleRoomInfoUpdate(m protocol.RoomInfoUpdate) { g.room.HandleRoomInfoUpdate(m) }
func (g *Game) HandlePlayerPosChange(m protocol.PlayerPosChange) {
	g.players.HandlePlayerPosChange(m)
}

func (g *Game) HandlePlayerJoin(m protocol.PlayerJoin) {
	g.players.HandlePlayerJoin(m, g.room.Session().UserID)
}

// 以下消息只由客户端发出，收到时记录后忽略
func (g *Game) HandleGotIt(protocol.GotIt)                     { g.clientOnly(protocol.MsgGotIt) }
func (g *Game) HandleJoinRoom(protocol.JoinRoom)               { g.clientOnly(protocol.MsgJoinRoom) }
func (g *Game) HandleUserChangeRole(protocol.UserChangeRole)   { g.clientOnly(protocol.MsgUserChangeRole) }
func (g *Game) HandleUserChangeStats(protocol.UserChangeStats) { g.clientOnly(protocol.MsgUserChangeStats) }

func (g *Game) clientOnly(t protocol.MsgType) {
	g.metrics.IncUnexpected()
	Log.Debugf("ignoring client-only message %s", t)
}

func (g *Game) publish() {
	s := g.room.Session()
	snap := &Snapshot{
		Tick:   g.tickSeq,
		State:  s.State.String(),
		UserID: s.UserID,
		Name:   s.UserName,
		Roster: g.room.Roster(),
	}
	local, _ := g.players.registry.Local()
	for _, p := range g.players.registry.Players() {
		snap.Players = append(snap.Players, newPlayerState(p, p == local))
	}
	g.snapshot.Store(snap)
}
