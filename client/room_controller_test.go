package client_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"bubblearena/client"
	clientmocks "bubblearena/client/mocks"
	"bubblearena/internal/clock"
	apperrors "bubblearena/internal/errors"
	"bubblearena/protocol"
)

const testURL = "ws://room.test/ws"

type rosterRecorder struct {
	calls [][]client.RoomMember
}

func (r *rosterRecorder) OnRoster(m []client.RoomMember) { r.calls = append(r.calls, m) }

func newRoom(t *testing.T, tr client.Transport, opts ...func(*client.RoomConfig)) *client.RoomController {
	cfg := &client.RoomConfig{
		URL:       testURL,
		Name:      "alice",
		Transport: tr,
		Metrics:   &client.ClientMetrics{},
	}
	for _, o := range opts {
		o(cfg)
	}
	rc, err := client.NewRoomController(cfg)
	require.NoError(t, err)
	return rc
}

// attached returns a controller that has connected and is waiting for Welcome.
func attached(t *testing.T, tr *clientmocks.MockTransport, opts ...func(*client.RoomConfig)) *client.RoomController {
	rc := newRoom(t, tr, opts...)
	tr.EXPECT().IsConnected().Return(false)
	tr.EXPECT().Connect(testURL)
	rc.Attach()
	assert.Equal(t, client.StateConnecting, rc.Session().State)
	tr.EXPECT().IsConnected().Return(true)
	rc.OnOpen()
	require.Equal(t, client.StateAwaitingWelcome, rc.Session().State)
	return rc
}

func decodeFrame(t *testing.T, b []byte) protocol.Message {
	msg, err := protocol.Decode(b)
	require.NoError(t, err)
	return msg
}

func TestNewRoomController_Validation(t *testing.T) {
	_, err := client.NewRoomController(nil)
	assert.Error(t, err)

	_, err = client.NewRoomController(&client.RoomConfig{URL: testURL})
	assert.Error(t, err, "transport is required")

	ctrl := gomock.NewController(t)
	_, err = client.NewRoomController(&client.RoomConfig{Transport: clientmocks.NewMockTransport(ctrl)})
	assert.Error(t, err, "url is required")
}

func TestRoomController_WelcomeSendsGotItThenJoinRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	metrics := &client.ClientMetrics{}
	rc := attached(t, tr, func(c *client.RoomConfig) { c.Metrics = metrics })

	gomock.InOrder(
		tr.EXPECT().Send(gomock.Any()).Do(func(b []byte) {
			assert.Equal(t, protocol.GotIt{Name: "alice"}, decodeFrame(t, b))
		}),
		tr.EXPECT().Send(gomock.Any()).Do(func(b []byte) {
			assert.Equal(t, protocol.JoinRoom{}, decodeFrame(t, b))
		}),
	)

	rc.HandleWelcome(protocol.Welcome{UID: "u1"})

	s := rc.Session()
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "alice", s.UserName)
	assert.Equal(t, client.StateIdentified, s.State)
	assert.Equal(t, int64(2), metrics.FramesSent)
}

func TestRoomController_RoomInfoUpdateShiftsRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	obs := &rosterRecorder{}
	rc := attached(t, tr, func(c *client.RoomConfig) { c.Observer = obs })

	tr.EXPECT().Send(gomock.Any()).Times(2)
	rc.HandleWelcome(protocol.Welcome{UID: "u1"})

	rc.HandleRoomInfoUpdate(protocol.RoomInfoUpdate{Users: []protocol.RoomUser{
		{UID: "u1", Name: "alice", Role: 0},
		{UID: "u2", Name: "bob", Role: 0},
		{UID: "u3", Name: "carol", Role: 3},
	}})

	want := []client.RoomMember{
		{UID: "u1", Name: "alice", DisplayRole: 1},
		{UID: "u2", Name: "bob", DisplayRole: 1},
		{UID: "u3", Name: "carol", DisplayRole: 4},
	}
	assert.Equal(t, want, rc.Roster())
	require.Len(t, obs.calls, 1)
	assert.Equal(t, want, obs.calls[0])
	assert.Equal(t, client.StateInRoom, rc.Session().State)
}

func TestRoomController_ChangeRoleAndStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	rc := attached(t, tr)

	gomock.InOrder(
		tr.EXPECT().Send(gomock.Any()).Do(func(b []byte) {
			assert.Equal(t, protocol.UserChangeRole{Role: 2}, decodeFrame(t, b))
		}),
		tr.EXPECT().Send(gomock.Any()).Do(func(b []byte) {
			assert.Equal(t, protocol.UserChangeStats{Ready: 1}, decodeFrame(t, b))
		}),
		tr.EXPECT().Send(gomock.Any()).Do(func(b []byte) {
			assert.Equal(t, protocol.UserChangeStats{Ready: 0}, decodeFrame(t, b))
		}),
	)

	assert.True(t, rc.ChangeRole(2))
	assert.True(t, rc.ChangeStats(true))
	assert.True(t, rc.ChangeStats(false))
	assert.False(t, rc.ChangeRole(-1))
}

func TestRoomController_NoSendsWhileDisconnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	rc := attached(t, tr)

	rc.OnClose(errors.New("reset by peer"))
	assert.Equal(t, client.StateDisconnected, rc.Session().State)
	assert.False(t, rc.Session().Connected)

	// no Send expectation: any send fails the test
	assert.False(t, rc.ChangeRole(1))
	assert.False(t, rc.ChangeStats(true))
	rc.HandleWelcome(protocol.Welcome{UID: "late"})
}

func TestRoomController_AttachWhenAlreadyConnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	rc := newRoom(t, tr)

	tr.EXPECT().IsConnected().Return(true)
	rc.Attach()

	s := rc.Session()
	assert.True(t, s.Connected)
	assert.Equal(t, client.StateAwaitingWelcome, s.State)
}

func TestRoomController_HandshakeRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	clk := clock.NewManual(time.Unix(1000, 0))
	metrics := &client.ClientMetrics{}
	rc := attached(t, tr, func(c *client.RoomConfig) {
		c.Clock = clk
		c.WelcomeTimeout = 5 * time.Second
		c.Metrics = metrics
	})

	clk.Advance(4 * time.Second)
	rc.CheckHandshake(clk.Now())
	assert.Equal(t, client.StateAwaitingWelcome, rc.Session().State)

	clk.Advance(2 * time.Second)
	gomock.InOrder(
		tr.EXPECT().Close(),
		tr.EXPECT().Connect(testURL),
	)
	rc.CheckHandshake(clk.Now())
	assert.Equal(t, client.StateConnecting, rc.Session().State)
	assert.Equal(t, int64(1), metrics.HandshakeRetries)

	// a connecting session is not retried again
	clk.Advance(time.Minute)
	rc.CheckHandshake(clk.Now())
}

func TestRoomController_StaleOpenIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	rc := newRoom(t, tr)

	tr.EXPECT().IsConnected().Return(false)
	tr.EXPECT().Connect(testURL)
	rc.Attach()

	// the connection was closed again before the open event was applied
	tr.EXPECT().IsConnected().Return(false)
	rc.OnOpen()
	s := rc.Session()
	assert.False(t, s.Connected)
	assert.Equal(t, client.StateConnecting, s.State)
}

func TestRoomController_ReconnectsAfterDisconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	clk := clock.NewManual(time.Unix(1000, 0))
	metrics := &client.ClientMetrics{}
	rc := attached(t, tr, func(c *client.RoomConfig) {
		c.Clock = clk
		c.WelcomeTimeout = 5 * time.Second
		c.Metrics = metrics
	})

	rc.OnClose(apperrors.WrapWithCode(errors.New("connection refused"), apperrors.CodeUnavailable, "dial"))
	assert.Equal(t, client.StateDisconnected, rc.Session().State)

	clk.Advance(4 * time.Second)
	rc.CheckHandshake(clk.Now())
	assert.Equal(t, client.StateDisconnected, rc.Session().State)

	clk.Advance(2 * time.Second)
	tr.EXPECT().Connect(testURL)
	rc.CheckHandshake(clk.Now())
	assert.Equal(t, client.StateConnecting, rc.Session().State)
	assert.Equal(t, int64(1), metrics.HandshakeRetries)
}

func TestRoomController_NoReconnectWithoutTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)
	clk := clock.NewManual(time.Unix(1000, 0))
	rc := attached(t, tr, func(c *client.RoomConfig) { c.Clock = clk })

	rc.OnClose(errors.New("reset by peer"))
	clk.Advance(time.Hour)
	// no Connect expectation: a retry fails the test
	rc.CheckHandshake(clk.Now())
	assert.Equal(t, client.StateDisconnected, rc.Session().State)
}

func TestRoomController_DetachIsUnconditional(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := clientmocks.NewMockTransport(ctrl)

	rc := newRoom(t, tr)
	tr.EXPECT().Close()
	rc.Detach()
	assert.Equal(t, client.Session{}, rc.Session())

	rc = attached(t, tr)
	tr.EXPECT().Send(gomock.Any()).Times(2)
	rc.HandleWelcome(protocol.Welcome{UID: "u1"})
	tr.EXPECT().Close()
	rc.Detach()
	assert.Equal(t, client.StateDisconnected, rc.Session().State)
	assert.Empty(t, rc.Roster())

	// events after detach are ignored
	rc.OnOpen()
	rc.HandleRoomInfoUpdate(protocol.RoomInfoUpdate{Users: []protocol.RoomUser{{UID: "x"}}})
	assert.Empty(t, rc.Roster())
}
