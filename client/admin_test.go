package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bubblearena/game"
	"bubblearena/protocol"
)

func serve(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAdmin_HealthAndState(t *testing.T) {
	g := joined(t)
	mux := NewAdminMux(g.Game, g.inbox)

	rec := serve(mux, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(mux, http.MethodGet, "/debug/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "u1", snap.UserID)
	assert.Equal(t, "identified", snap.State)
	require.Len(t, snap.Players, 1)
	assert.True(t, snap.Players[0].Local)

	rec = serve(mux, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "metrics")
	assert.EqualValues(t, 1, body["tick"])
}

func TestAdmin_Attributes(t *testing.T) {
	g := joined(t)
	mux := NewAdminMux(g.Game, g.inbox)

	rec := serve(mux, http.MethodPost, "/admin/attributes", `{"speed":5}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	// 命令在 Tick 中才生效
	local, _ := g.Players().Registry().Local()
	assert.Equal(t, uint8(3), local.Attr.Speed)
	g.Tick()

	rec = serve(mux, http.MethodGet, "/admin/attributes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var attr game.Attributes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attr))
	assert.Equal(t, game.Attributes{Speed: 5, Damage: 1, Bubble: 1}, attr)

	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPost, "/admin/attributes", `{`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(mux, http.MethodDelete, "/admin/attributes", "").Code)
}

func TestAdmin_AttributesWithoutLocalPlayer(t *testing.T) {
	g := newTestGame(t)
	g.Tick()
	mux := NewAdminMux(g.Game, g.inbox)

	assert.Equal(t, http.StatusNotFound, serve(mux, http.MethodGet, "/admin/attributes", "").Code)
}

func TestAdmin_RoleAndReady(t *testing.T) {
	g := joined(t)
	mux := NewAdminMux(g.Game, g.inbox)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(mux, http.MethodGet, "/admin/role", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPost, "/admin/role", `{"role":-1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPost, "/admin/role", `{}`).Code)

	require.Equal(t, http.StatusAccepted, serve(mux, http.MethodPost, "/admin/role", `{"role":2}`).Code)
	require.Equal(t, http.StatusAccepted, serve(mux, http.MethodPost, "/admin/ready", `{"ready":true}`).Code)
	assert.Empty(t, g.tr.sent, "commands wait for the next tick")

	g.Tick()
	assert.Equal(t, []protocol.Message{
		protocol.UserChangeRole{Role: 2},
		protocol.UserChangeStats{Ready: 1},
	}, g.tr.messages(t))
}

func TestAdmin_StoppedInbox(t *testing.T) {
	g := joined(t)
	mux := NewAdminMux(g.Game, g.inbox)
	g.Detach()

	assert.Equal(t, http.StatusServiceUnavailable, serve(mux, http.MethodPost, "/admin/ready", `{"ready":false}`).Code)
}
