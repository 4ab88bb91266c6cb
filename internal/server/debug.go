package server

import (
	"encoding/json"
	"net/http"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
)

// DebugHandler предоставляет доступ к внутреннему состоянию матчей
type DebugHandler struct {
	Lobby *Lobby
}

func NewDebugHandler(l *Lobby) *DebugHandler {
	return &DebugHandler{Lobby: l}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/matches", h.handleListMatches)
	mux.HandleFunc("/debug/digest", h.handleDigest)
}

// /debug/matches - список матчей: игроки, боты, подтверждённые кадры
func (h *DebugHandler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	summary := make([]MatchStatus, 0)
	for _, m := range h.Lobby.Matches() {
		summary = append(summary, m.Status())
	}
	writeJSON(w, summary)
}

// /debug/digest?match=<id> - дайджест мира хоста; клиент сравнивает со своим на том же тике
func (h *DebugHandler) handleDigest(w http.ResponseWriter, r *http.Request) {
	m, err := h.Lobby.Get(r.URL.Query().Get("match"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	tick, digest, err := m.Digest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		Match  string     `json:"match"`
		Tick   types.Tick `json:"tick"`
		Digest string     `json:"digest"`
	}{m.ID.String(), tick, digest})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локальных инструментов)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Если data == nil (например, нет матчей), возвращаем пустой массив [], а не null
	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
