// Package protocol 房间协议的消息定义、编解码与分发。
package protocol

import "fmt"

// MsgType 外层信封中的消息类型标签
type MsgType uint8

const (
	MsgNone MsgType = iota
	MsgWelcome
	MsgGotIt
	MsgJoinRoom
	MsgRoomInfoUpdate
	MsgUserChangeRole
	MsgUserChangeStats
	MsgPlayerJoin
	MsgPlayerPosChange
)

// AllTypes 所有有效的消息类型
var AllTypes = []MsgType{
	MsgWelcome,
	MsgGotIt,
	MsgJoinRoom,
	MsgRoomInfoUpdate,
	MsgUserChangeRole,
	MsgUserChangeStats,
	MsgPlayerJoin,
	MsgPlayerPosChange,
}

func (t MsgType) String() string {
	switch t {
	case MsgWelcome:
		return "Welcome"
	case MsgGotIt:
		return "GotIt"
	case MsgJoinRoom:
		return "JoinRoom"
	case MsgRoomInfoUpdate:
		return "RoomInfoUpdate"
	case MsgUserChangeRole:
		return "UserChangeRole"
	case MsgUserChangeStats:
		return "UserChangeStats"
	case MsgPlayerJoin:
		return "PlayerJoin"
	case MsgPlayerPosChange:
		return "PlayerPosChange"
	default:
		return fmt.Sprintf("MsgType(%d)", uint8(t))
	}
}

// Message 所有消息体实现的接口
type Message interface {
	Type() MsgType
}

// Welcome 服务端分配的用户 ID
type Welcome struct {
	UID string `msgpack:"uid"`
}

// GotIt 客户端确认并上报显示名
type GotIt struct {
	Name string `msgpack:"name"`
}

// JoinRoom 请求加入房间
type JoinRoom struct{}

// RoomUser 房间内的一个用户；Role 从 0 开始
type RoomUser struct {
	UID  string `msgpack:"uid"`
	Name string `msgpack:"name"`
	Role int    `msgpack:"role"`
}

// RoomInfoUpdate 房间成员全量同步
type RoomInfoUpdate struct {
	Users []RoomUser `msgpack:"users"`
}

// UserChangeRole 切换角色
type UserChangeRole struct {
	Role int `msgpack:"role"`
}

// UserChangeStats 准备状态（1 已准备，0 未准备）
type UserChangeStats struct {
	Ready int `msgpack:"ready"`
}

// PlayerJoin 玩家进入对局
type PlayerJoin struct {
	ID   string  `msgpack:"id"`
	Role string  `msgpack:"role"`
	X    float64 `msgpack:"x"`
	Y    float64 `msgpack:"y"`
}

// PlayerPosChange 玩家位置与朝向
type PlayerPosChange struct {
	ID        string  `msgpack:"id"`
	X         float64 `msgpack:"x"`
	Y         float64 `msgpack:"y"`
	Direction int     `msgpack:"dir"`
}

func (Welcome) Type() MsgType         { return MsgWelcome }
func (GotIt) Type() MsgType           { return MsgGotIt }
func (JoinRoom) Type() MsgType        { return MsgJoinRoom }
func (RoomInfoUpdate) Type() MsgType  { return MsgRoomInfoUpdate }
func (UserChangeRole) Type() MsgType  { return MsgUserChangeRole }
func (UserChangeStats) Type() MsgType { return MsgUserChangeStats }
func (PlayerJoin) Type() MsgType      { return MsgPlayerJoin }
func (PlayerPosChange) Type() MsgType { return MsgPlayerPosChange }
