package game

const (
	// ProbeSideMargin 探测点在移动轴垂直方向上的偏移
	ProbeSideMargin = 16
	// ProbeForwardMargin 探测点沿移动方向超出候选位置的距离
	ProbeForwardMargin = 20
)

// TileMap 地图可达性查询
type TileMap interface {
	IsAccessible(p Vec2) bool
}

// Step 一个单位子步：候选位置和两个碰撞探测点
type Step struct {
	Next   Vec2
	Probe1 Vec2
	Probe2 Vec2
}

// NextStep 计算沿 dir 移动一个单位后的候选位置与探测点。
// 两个探测点分列实体宽度两侧，避免角落穿墙；DirNone 原地不动。
func NextStep(pos Vec2, dir Direction) Step {
	const step = 1
	next, p1, p2 := pos, pos, pos

	switch dir {
	case DirLeft:
		next.X -= step
		p1.X, p2.X = next.X-ProbeForwardMargin, next.X-ProbeForwardMargin
		p1.Y -= ProbeSideMargin
		p2.Y += ProbeSideMargin
	case DirRight:
		next.X += step
		p1.X, p2.X = next.X+ProbeForwardMargin, next.X+ProbeForwardMargin
		p1.Y -= ProbeSideMargin
		p2.Y += ProbeSideMargin
	case DirUp:
		next.Y += step
		p1.Y, p2.Y = next.Y+ProbeForwardMargin, next.Y+ProbeForwardMargin
		p1.X += ProbeSideMargin
		p2.X -= ProbeSideMargin
	case DirDown:
		next.Y -= step
		p1.Y, p2.Y = next.Y-ProbeForwardMargin, next.Y-ProbeForwardMargin
		p1.X += ProbeSideMargin
		p2.X -= ProbeSideMargin
	}
	return Step{Next: next, Probe1: p1, Probe2: p2}
}

// Advance 执行一个 Tick 的移动：最多 Speed 个子步，
// 任一探测点不可达即终止本 Tick 剩余子步。返回成功提交的子步数。
func Advance(p *Player, m TileMap) int {
	if p == nil || m == nil || p.Status != StatusFree {
		return 0
	}
	dir := p.Direction()
	if dir == DirNone {
		return 0
	}

	moved := 0
	for i := uint8(0); i < p.Attr.Speed; i++ {
		s := NextStep(p.Pos, dir)
		if !m.IsAccessible(s.Probe1) || !m.IsAccessible(s.Probe2) {
			break
		}
		p.Pos = s.Next
		moved++
	}
	return moved
}
