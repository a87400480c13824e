package game

import "sync/atomic"

// Status 玩家状态；只有 StatusFree 可以被移动驱动
type Status int

const (
	StatusFree Status = iota
	StatusBlocked
	StatusTrapped
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusBlocked:
		return "blocked"
	case StatusTrapped:
		return "trapped"
	default:
		return "unknown"
	}
}

// Attributes 玩家属性
type Attributes struct {
	Speed  uint8 `json:"speed"`
	Damage uint8 `json:"damage"`
	Bubble uint8 `json:"bubble"`
}

// DefaultAttributes 新建玩家的初始属性
var DefaultAttributes = Attributes{Speed: 3, Damage: 1, Bubble: 1}

// Vec2 连续坐标，+Y 朝上
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sequence 单调递增的按键戳来源，同一注册表内的玩家共享
type Sequence struct {
	n atomic.Uint64
}

// Next 返回下一个戳（从 1 开始，0 保留为“未按下”）
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Player 玩家实体
type Player struct {
	ID     string
	Role   string
	Status Status
	Attr   Attributes
	Pos    Vec2

	stamps [numDirections]uint64
	seq    *Sequence
}

// NewPlayer 创建一个未注册的玩家；seq 为 nil 时使用独立的序列
func NewPlayer(id, role string, attr Attributes, seq *Sequence) *Player {
	if seq == nil {
		seq = &Sequence{}
	}
	return &Player{
		ID:     id,
		Role:   role,
		Status: StatusFree,
		Attr:   attr,
		seq:    seq,
	}
}

// Press 按下方向键：记录最新的戳
func (p *Player) Press(d Direction) {
	if !d.Valid() {
		return
	}
	p.stamps[d] = p.seq.Next()
}

// Release 松开方向键：清零
func (p *Player) Release(d Direction) {
	if !d.Valid() {
		return
	}
	p.stamps[d] = 0
}

// Face 远端玩家朝向：只保留一个方向
func (p *Player) Face(d Direction) {
	p.stamps = [numDirections]uint64{}
	p.Press(d)
}

// Direction 当前生效的方向
func (p *Player) Direction() Direction {
	return ResolveDirection(p.stamps)
}

// Stamps 方向戳副本（调试用）
func (p *Player) Stamps() [numDirections]uint64 {
	return p.stamps
}
