package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"bubblearena/internal/errors"
)

func sampleMessages() []Message {
	return []Message{
		Welcome{UID: "u1"},
		GotIt{Name: "alice"},
		JoinRoom{},
		RoomInfoUpdate{Users: []RoomUser{{UID: "u1", Name: "alice", Role: 0}, {UID: "u2", Name: "bob", Role: 2}}},
		UserChangeRole{Role: 3},
		UserChangeStats{Ready: 1},
		PlayerJoin{ID: "u1", Role: "1", X: 60, Y: 100},
		PlayerPosChange{ID: "u2", X: 12.5, Y: 40, Direction: 3},
	}
}

func TestEncodeDecode(t *testing.T) {
	msgs := sampleMessages()
	require.Len(t, msgs, len(AllTypes), "one sample per message type")

	for _, msg := range msgs {
		t.Run(msg.Type().String(), func(t *testing.T) {
			frame, err := Encode(msg)
			require.NoError(t, err)

			got, err := Decode(frame)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte{0xc1})
	assert.True(t, errors.IsInvalidArgument(err), "garbage framing")

	frame, err := msgpack.Marshal(&envelope{Type: MsgType(200), Body: msgpack.RawMessage{0x80}})
	require.NoError(t, err)
	_, err = Decode(frame)
	assert.True(t, errors.IsInvalidArgument(err), "unknown type")

	_, err = Encode(nil)
	assert.True(t, errors.IsInvalidArgument(err))
}

type recordingHandler struct {
	calls []MsgType
}

func (r *recordingHandler) HandleWelcome(Welcome)                 { r.calls = append(r.calls, MsgWelcome) }
func (r *recordingHandler) HandleGotIt(GotIt)                     { r.calls = append(r.calls, MsgGotIt) }
func (r *recordingHandler) HandleJoinRoom(JoinRoom)               { r.calls = append(r.calls, MsgJoinRoom) }
func (r *recordingHandler) HandleRoomInfoUpdate(RoomInfoUpdate)   { r.calls = append(r.calls, MsgRoomInfoUpdate) }
func (r *recordingHandler) HandleUserChangeRole(UserChangeRole)   { r.calls = append(r.calls, MsgUserChangeRole) }
func (r *recordingHandler) HandleUserChangeStats(UserChangeStats) { r.calls = append(r.calls, MsgUserChangeStats) }
func (r *recordingHandler) HandlePlayerJoin(PlayerJoin)           { r.calls = append(r.calls, MsgPlayerJoin) }
func (r *recordingHandler) HandlePlayerPosChange(PlayerPosChange) { r.calls = append(r.calls, MsgPlayerPosChange) }

func TestDispatch_EveryTypeReachesItsHandler(t *testing.T) {
	h := &recordingHandler{}
	for _, msg := range sampleMessages() {
		require.NoError(t, Dispatch(msg, h))
	}
	assert.Equal(t, AllTypes, h.calls)
}

func TestDispatch_Unknown(t *testing.T) {
	h := &recordingHandler{}
	err := Dispatch(&Welcome{}, h)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Empty(t, h.calls)
}

func TestMsgTypeString(t *testing.T) {
	assert.Equal(t, "RoomInfoUpdate", MsgRoomInfoUpdate.String())
	assert.Equal(t, "MsgType(99)", MsgType(99).String())
}
