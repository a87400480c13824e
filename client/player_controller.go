package client

import (
	"bubblearena/game"
	"bubblearena/protocol"
)

// Outbound 出站消息边界
type Outbound interface {
	Send(msg protocol.Message) bool
}

// PlayerController 管理玩家实体：本地按键、远端位置同步、每 Tick 的本地移动
type PlayerController struct {
	registry *game.Registry
	tiles    game.TileMap
	out      Outbound
	metrics  *ClientMetrics

	lastPos game.Vec2
	lastDir game.Direction
	synced  bool
}

// NewPlayerController 创建控制器；out 为 nil 时不上报本地位置
func NewPlayerController(reg *game.Registry, tiles game.TileMap, out Outbound, m *ClientMetrics) *PlayerController {
	if m == nil {
		m = &ClientMetrics{}
	}
	return &PlayerController{registry: reg, tiles: tiles, out: out, metrics: m}
}

// Registry 玩家注册表
func (c *PlayerController) Registry() *game.Registry {
	return c.registry
}

// HandleKey 按下记录时间戳，松开清零；没有本地玩家时忽略
func (c *PlayerController) HandleKey(ev KeyEvent) {
	local, ok := c.registry.Local()
	if !ok {
		Log.Debugf("key %s ignored: no local player", ev.Dir)
		return
	}
	if ev.Down {
		local.Press(ev.Dir)
	} else {
		local.Release(ev.Dir)
	}
}

// SpawnLocal 创建本地玩家并放到 pos
func (c *PlayerController) SpawnLocal(id, role string, pos game.Vec2) (*game.Player, error) {
	p, err := c.registry.CreateLocal(id, role)
	if err != nil {
		return nil, err
	}
	p.Pos = pos
	c.synced = false
	return p, nil
}

// HandlePlayerJoin 玩家进入；ID 与本地 uid 相同，或尚无本地玩家时，作为本地玩家
func (c *PlayerController) HandlePlayerJoin(msg protocol.PlayerJoin, localUID string) {
	pos := game.Vec2{X: msg.X, Y: msg.Y}
	_, hasLocal := c.registry.Local()
	if (localUID != "" && msg.ID == localUID) || !hasLocal {
		if _, err := c.SpawnLocal(msg.ID, msg.Role, pos); err != nil {
			Log.Warnf("create local player %s: %v", msg.ID, err)
		}
		return
	}
	p, err := c.registry.Create(msg.ID, msg.Role)
	if err != nil {
		Log.Warnf("create player %s: %v", msg.ID, err)
		return
	}
	p.Pos = pos
}

// HandlePlayerPosChange 远端玩家位置；本地玩家与未知 ID 直接忽略
func (c *PlayerController) HandlePlayerPosChange(msg protocol.PlayerPosChange) {
	p, ok := c.registry.Get(msg.ID)
	if !ok {
		Log.Debugf("position for unknown player %s ignored", msg.ID)
		return
	}
	if local, ok := c.registry.Local(); ok && local == p {
		return
	}
	dir := game.Direction(msg.Direction)
	if !dir.Valid() {
		dir = game.DirNone
	}
	p.Pos = game.Vec2{X: msg.X, Y: msg.Y}
	p.Face(dir)
}

// SetStatus 修改玩家状态
func (c *PlayerController) SetStatus(id string, s game.Status) bool {
	return c.registry.SetStatus(id, s)
}

// Tick 只驱动本地玩家；位置或方向变化时上报
func (c *PlayerController) Tick() {
	local, ok := c.registry.Local()
	if !ok {
		return
	}
	dir := local.Direction()
	moved := game.Advance(local, c.tiles)
	c.metrics.AddSteps(moved)
	if local.Status == game.StatusFree && dir != game.DirNone && moved < int(local.Attr.Speed) {
		c.metrics.IncBlocked()
	}

	if c.out == nil || (c.synced && local.Pos == c.lastPos && dir == c.lastDir) {
		return
	}
	if c.out.Send(protocol.PlayerPosChange{ID: local.ID, X: local.Pos.X, Y: local.Pos.Y, Direction: int(dir)}) {
		c.lastPos, c.lastDir, c.synced = local.Pos, dir, true
	}
}
