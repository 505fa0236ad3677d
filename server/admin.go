package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// configView GET /admin/config 的输出，tickPeriod 以 Go duration 字符串表示
type configView struct {
	Config
	TickPeriod string `json:"tickPeriod"`
}

func newConfigView(c Config) configView {
	return configView{Config: c, TickPeriod: c.TickPeriod.String()}
}

// HandleAdminConfig 提供运行期配置的读取与更新（热更新基本规则）
// GET /admin/config   返回当前配置
// POST /admin/config  以 JSON 载荷更新部分字段，例如 {"maxEnemies":10,"tickPeriod":"500ms"}
func HandleAdminConfig(g *Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg, err := g.Config(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, http.StatusOK, newConfigView(cfg))
		case http.MethodPost:
			var patch ConfigPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			cfg, err := g.UpdateConfig(r.Context(), patch)
			if errors.Is(err, ErrGameStopped) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, newConfigView(cfg))
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMetrics 输出运行指标与当前实体数量
// GET /metrics
func HandleMetrics(g *Game, m *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"metrics": m.Snapshot(),
		}
		if counts, err := g.Counts(r.Context()); err == nil {
			payload["entities"] = counts
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
