package client

import "time"

// SessionState 握手状态
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateAwaitingWelcome
	StateIdentified
	StateInRoom
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingWelcome:
		return "awaiting_welcome"
	case StateIdentified:
		return "identified"
	case StateInRoom:
		return "in_room"
	default:
		return "unknown"
	}
}

// Session 会话状态，由 RoomController 持有，Attach 时创建、Detach 时释放
type Session struct {
	Connected bool
	UserID    string
	UserName  string
	State     SessionState

	connectedAt    time.Time
	disconnectedAt time.Time
}

// RoomMember 房间成员；DisplayRole 为显示用角色号（线上角色号 + 1）
type RoomMember struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	DisplayRole int    `json:"role"`
}

// RosterObserver 接收房间成员变化（UI 层）
type RosterObserver interface {
	OnRoster(members []RoomMember)
}
