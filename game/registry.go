package game

import (
	"os"
	"path/filepath"
	"sort"

	"bubblearena/internal/errors"
)

// RoleCatalog 角色初始化：角色没有对应资源时返回错误
type RoleCatalog interface {
	Lookup(role string) (Attributes, error)
}

// AssetRoles 以资源目录为准：<Dir>/<role>.png 必须存在
type AssetRoles struct {
	Dir string
}

// Lookup 检查角色贴图是否存在
func (a AssetRoles) Lookup(role string) (Attributes, error) {
	if role == "" || filepath.Base(role) != role {
		return Attributes{}, errors.InvalidArgumentf("invalid role %q", role)
	}
	path := filepath.Join(a.Dir, role+".png")
	info, err := os.Stat(path)
	if err != nil {
		return Attributes{}, errors.WrapWithCode(err, errors.CodeNotFound, "role asset missing").WithMeta("role", role)
	}
	if info.IsDir() {
		return Attributes{}, errors.NotFoundf("role asset %s is a directory", path).WithMeta("role", role)
	}
	return DefaultAttributes, nil
}

// StaticRoles 固定的角色表，适合无资源的运行环境与测试
type StaticRoles map[string]Attributes

// Lookup 查表
func (s StaticRoles) Lookup(role string) (Attributes, error) {
	attr, ok := s[role]
	if !ok {
		return Attributes{}, errors.NotFoundf("unknown role %q", role).WithMeta("role", role)
	}
	return attr, nil
}

// Registry 按 ID 管理玩家，并额外记录本地玩家。
// 只在 Tick 所在的协程里修改，因此不加锁。
type Registry struct {
	roles   RoleCatalog
	seq     Sequence
	players map[string]*Player
	local   *Player
}

// NewRegistry 创建注册表
func NewRegistry(roles RoleCatalog) *Registry {
	return &Registry{
		roles:   roles,
		players: make(map[string]*Player),
	}
}

// Create 创建并注册玩家；角色初始化失败时返回 nil，注册表不变。
// 已存在的同 ID 玩家会被替换。
func (r *Registry) Create(id, role string) (*Player, error) {
	if id == "" {
		return nil, errors.InvalidArgument("player id is required")
	}
	attr, err := r.roles.Lookup(role)
	if err != nil {
		return nil, errors.Wrapf(err, "create player %s", id)
	}
	p := NewPlayer(id, role, attr, &r.seq)
	if r.local != nil && r.local.ID == id {
		r.local = nil
	}
	r.players[id] = p
	return p, nil
}

// CreateLocal 创建本地玩家。Create 已经按 ID 注册，这里只标记本地引用。
func (r *Registry) CreateLocal(id, role string) (*Player, error) {
	p, err := r.Create(id, role)
	if err != nil {
		return nil, err
	}
	r.local = p
	return p, nil
}

// Get 按 ID 查找
func (r *Registry) Get(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Local 本地玩家
func (r *Registry) Local() (*Player, bool) {
	return r.local, r.local != nil
}

// SetStatus 修改玩家状态；ID 不存在时返回 false
func (r *Registry) SetStatus(id string, s Status) bool {
	p, ok := r.players[id]
	if !ok {
		return false
	}
	p.Status = s
	return true
}

// Len 玩家数量
func (r *Registry) Len() int {
	return len(r.players)
}

// Players 按 ID 排序的玩家列表
func (r *Registry) Players() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
