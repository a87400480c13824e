package client

import (
	"encoding/json"
	"net/http"
)

// NewAdminMux 调试与管理接口
// GET  /metrics            运行指标
// GET  /debug/state        最近一次 Tick 的快照
// GET  /admin/attributes   本地玩家属性
// POST /admin/attributes   以 JSON 载荷更新部分属性（在 Tick 中生效）
// POST /admin/role         {"role":0} 请求切换角色
// POST /admin/ready        {"ready":true} 上报准备状态
func NewAdminMux(g *Game, in *Inbox) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"tick":    g.Snapshot().Tick,
			"metrics": g.Metrics().Snapshot(),
		})
	})
	mux.HandleFunc("/debug/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, g.Snapshot())
	})
	mux.HandleFunc("/admin/attributes", func(w http.ResponseWriter, r *http.Request) {
		handleAttributes(w, r, g, in)
	})
	mux.HandleFunc("/admin/role", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Role *int `json:"role"`
		}
		if !decodePost(w, r, &body) {
			return
		}
		if body.Role == nil || *body.Role < 0 {
			http.Error(w, "role must be a non-negative integer", http.StatusBadRequest)
			return
		}
		role := *body.Role
		enqueue(w, in, func() { g.Room().ChangeRole(role) })
	})
	mux.HandleFunc("/admin/ready", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Ready bool `json:"ready"`
		}
		if !decodePost(w, r, &body) {
			return
		}
		enqueue(w, in, func() { g.Room().ChangeStats(body.Ready) })
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func handleAttributes(w http.ResponseWriter, r *http.Request, g *Game, in *Inbox) {
	type attrs struct {
		Speed  *uint8 `json:"speed,omitempty"`
		Damage *uint8 `json:"damage,omitempty"`
		Bubble *uint8 `json:"bubble,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		local, ok := g.Snapshot().Local()
		if !ok {
			http.Error(w, "no local player", http.StatusNotFound)
			return
		}
		writeJSON(w, local.Attr)
	case http.MethodPost:
		var body attrs
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		enqueue(w, in, func() {
			local, ok := g.Players().Registry().Local()
			if !ok {
				Log.Warnf("attributes update ignored: no local player")
				return
			}
			if body.Speed != nil {
				local.Attr.Speed = *body.Speed
			}
			if body.Damage != nil {
				local.Attr.Damage = *body.Damage
			}
			if body.Bubble != nil {
				local.Attr.Bubble = *body.Bubble
			}
			Log.Infof("attributes updated: speed=%d damage=%d bubble=%d", local.Attr.Speed, local.Attr.Damage, local.Attr.Bubble)
		})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func enqueue(w http.ResponseWriter, in *Inbox, fn func()) {
	if !in.Command(fn) {
		http.Error(w, "client stopped", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
