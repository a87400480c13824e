package protocol

import (
	"github.com/vmihailenco/msgpack/v5"

	"bubblearena/internal/errors"
)

// envelope 线上格式：类型标签 + 原始消息体
type envelope struct {
	Type MsgType            `msgpack:"t"`
	Body msgpack.RawMessage `msgpack:"b"`
}

// Encode 将消息打包为一帧
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.InvalidArgument("nil message")
	}
	body, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s body", msg.Type())
	}
	b, err := msgpack.Marshal(&envelope{Type: msg.Type(), Body: body})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s envelope", msg.Type())
	}
	return b, nil
}

// Decode 解析一帧；未知类型或格式错误返回 InvalidArgument
func Decode(frame []byte) (Message, error) {
	var env envelope
	if err := msgpack.Unmarshal(frame, &env); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "decode envelope")
	}

	msg, err := newMessage(env.Type)
	if err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(env.Body, msg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "decode "+env.Type.String()+" body")
	}
	return deref(msg), nil
}

func newMessage(t MsgType) (Message, error) {
	switch t {
	case MsgWelcome:
		return &Welcome{}, nil
	case MsgGotIt:
		return &GotIt{}, nil
	case MsgJoinRoom:
		return &JoinRoom{}, nil
	case MsgRoomInfoUpdate:
		return &RoomInfoUpdate{}, nil
	case MsgUserChangeRole:
		return &UserChangeRole{}, nil
	case MsgUserChangeStats:
		return &UserChangeStats{}, nil
	case MsgPlayerJoin:
		return &PlayerJoin{}, nil
	case MsgPlayerPosChange:
		return &PlayerPosChange{}, nil
	}
	return nil, errors.InvalidArgumentf("unknown message type %d", uint8(t))
}

// deref 解码时用指针，对外统一返回值类型
func deref(m Message) Message {
	switch v := m.(type) {
	case *Welcome:
		return *v
	case *GotIt:
		return *v
	case *JoinRoom:
		return *v
	case *RoomInfoUpdate:
		return *v
	case *UserChangeRole:
		return *v
	case *UserChangeStats:
		return *v
	case *PlayerJoin:
		return *v
	case *PlayerPosChange:
		return *v
	}
	return m
}
