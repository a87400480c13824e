package game

import "strings"

// Direction 移动方向；取值即方向时间戳数组下标，同时也是平局时的优先级
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirNone
)

// numDirections 方向槽位数量（不含 DirNone）
const numDirections = 4

// Valid 是否为四个基本方向之一
func (d Direction) Valid() bool {
	return d >= DirLeft && d < DirNone
}

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "none"
	}
}

// ParseDirection 解析方向名（left/right/up/down），大小写不敏感
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	}
	return DirNone, false
}

// ResolveDirection 从四个方向的时间戳中挑出当前生效的方向：
// 取非零的最大值；按下标顺序扫描，只有严格更大才替换，因此平局时下标小者胜。
// 全部为零返回 DirNone。
func ResolveDirection(stamps [numDirections]uint64) Direction {
	dir := DirNone
	var max uint64
	for i := 0; i < numDirections; i++ {
		if stamps[i] > max {
			max = stamps[i]
			dir = Direction(i)
		}
	}
	return dir
}
