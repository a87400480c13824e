package client

import "bubblearena/game"

// PlayerState 玩家的只读快照
type PlayerState struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Status    string          `json:"status"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Direction string          `json:"direction"`
	Attr      game.Attributes `json:"attr"`
	Local     bool            `json:"local,omitempty"`
}

// Snapshot 每个 Tick 结束时发布，供 HTTP 等其他协程读取
type Snapshot struct {
	Tick    int64         `json:"tick"`
	State   string        `json:"state"`
	UserID  string        `json:"uid"`
	Name    string        `json:"name"`
	Players []PlayerState `json:"players"`
	Roster  []RoomMember  `json:"roster"`
}

// Local 快照中的本地玩家
func (s *Snapshot) Local() (PlayerState, bool) {
	for _, p := range s.Players {
		if p.Local {
			return p, true
		}
	}
	return PlayerState{}, false
}

func newPlayerState(p *game.Player, local bool) PlayerState {
	return PlayerState{
		ID:        p.ID,
		Role:      p.Role,
		Status:    p.Status.String(),
		X:         p.Pos.X,
		Y:         p.Pos.Y,
		Direction: p.Direction().String(),
		Attr:      p.Attr,
		Local:     local,
	}
}
