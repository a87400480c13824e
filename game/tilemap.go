package game

import (
	"bufio"
	"io"
	"math"
	"os"
	"strings"

	"bubblearena/internal/errors"
)

// DefaultTileSize 每个格子的逻辑边长
const DefaultTileSize = 40

// Tile 格子类型
type Tile byte

const (
	TileFloor Tile = '.'
	TileWall  Tile = '#'
	TileBlock Tile = '*'
	TileSpawn Tile = 'S'
)

// GridMap 基于文本行的格子地图；第一行是地图最上方，逻辑 y 轴朝上
type GridMap struct {
	tiles    [][]Tile // tiles[row][col]，row 0 在最下方
	tileSize float64
	spawns   []Vec2
}

// ParseGridMap 从文本读取地图：'.' 地面、'#' 硬墙、'*' 软块、'S' 出生点（可走）
func ParseGridMap(r io.Reader, tileSize float64) (*GridMap, error) {
	if tileSize <= 0 {
		return nil, errors.InvalidArgumentf("tile size must be positive, got %v", tileSize)
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read map")
	}
	if len(lines) == 0 {
		return nil, errors.InvalidArgument("map is empty")
	}

	width := len(lines[0])
	h := len(lines)
	m := &GridMap{tiles: make([][]Tile, h), tileSize: tileSize}
	for i, line := range lines {
		if len(line) != width {
			return nil, errors.InvalidArgumentf("map line %d has width %d, want %d", i+1, len(line), width)
		}
		row := h - 1 - i
		m.tiles[row] = make([]Tile, width)
		for col := 0; col < width; col++ {
			t := Tile(line[col])
			switch t {
			case TileFloor, TileWall, TileBlock:
			case TileSpawn:
				m.spawns = append(m.spawns, m.Center(col, row))
			default:
				return nil, errors.InvalidArgumentf("map line %d col %d: unknown tile %q", i+1, col+1, line[col])
			}
			m.tiles[row][col] = t
		}
	}
	return m, nil
}

// LoadGridMap 从文件读取地图
func LoadGridMap(path string, tileSize float64) (*GridMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeNotFound, "open map "+path)
	}
	defer f.Close()
	return ParseGridMap(f, tileSize)
}

// Size 返回列数与行数
func (m *GridMap) Size() (cols, rows int) {
	return len(m.tiles[0]), len(m.tiles)
}

// TileSize 格子边长
func (m *GridMap) TileSize() float64 {
	return m.tileSize
}

// TileAt 读取格子；越界返回硬墙
func (m *GridMap) TileAt(col, row int) Tile {
	if row < 0 || row >= len(m.tiles) || col < 0 || col >= len(m.tiles[row]) {
		return TileWall
	}
	return m.tiles[row][col]
}

// Center 格子中心的逻辑坐标
func (m *GridMap) Center(col, row int) Vec2 {
	return Vec2{
		X: (float64(col) + 0.5) * m.tileSize,
		Y: (float64(row) + 0.5) * m.tileSize,
	}
}

// Spawns 出生点（按文本从上到下、从左到右）
func (m *GridMap) Spawns() []Vec2 {
	out := make([]Vec2, len(m.spawns))
	copy(out, m.spawns)
	return out
}

// IsAccessible 逻辑点所在格子是否可走；地图外一律不可走
func (m *GridMap) IsAccessible(p Vec2) bool {
	col := int(math.Floor(p.X / m.tileSize))
	row := int(math.Floor(p.Y / m.tileSize))
	switch m.TileAt(col, row) {
	case TileFloor, TileSpawn:
		return true
	}
	return false
}
