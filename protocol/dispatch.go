package protocol

import "bubblearena/internal/errors"

// Handler 每种消息一个方法；新增消息类型后，所有实现都必须补上对应方法才能编译
type Handler interface {
	HandleWelcome(Welcome)
	HandleGotIt(GotIt)
	HandleJoinRoom(JoinRoom)
	HandleRoomInfoUpdate(RoomInfoUpdate)
	HandleUserChangeRole(UserChangeRole)
	HandleUserChangeStats(UserChangeStats)
	HandlePlayerJoin(PlayerJoin)
	HandlePlayerPosChange(PlayerPosChange)
}

// Dispatch 按消息类型调用对应的处理方法
func Dispatch(msg Message, h Handler) error {
	switch m := msg.(type) {
	case Welcome:
		h.HandleWelcome(m)
	case GotIt:
		h.HandleGotIt(m)
	case JoinRoom:
		h.HandleJoinRoom(m)
	case RoomInfoUpdate:
		h.HandleRoomInfoUpdate(m)
	case UserChangeRole:
		h.HandleUserChangeRole(m)
	case UserChangeStats:
		h.HandleUserChangeStats(m)
	case PlayerJoin:
		h.HandlePlayerJoin(m)
	case PlayerPosChange:
		h.HandlePlayerPosChange(m)
	default:
		return errors.InvalidArgumentf("no handler for message %T", msg)
	}
	return nil
}
