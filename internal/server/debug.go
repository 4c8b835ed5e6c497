package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lizard-state/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/session", h.handleSession)
	mux.HandleFunc("/debug/entities", h.handleDumpEntities)
	mux.HandleFunc("/debug/queue", h.handleTurnQueue)
}

// /debug/session - фаза и число подписчиков
func (h *DebugHandler) handleSession(w http.ResponseWriter, _ *http.Request) {
	type SessionSummary struct {
		Phase       string `json:"phase"`
		Subscribers int    `json:"subscribers"`
		EntityCount int    `json:"entity_count"`
	}

	writeJSON(w, SessionSummary{
		Phase:       h.Service.Phase(),
		Subscribers: h.Service.Hub.SubscriberCount(),
		EntityCount: len(h.Service.Entities()),
	})
}

// /debug/entities - полные сущности, включая врагов вне поля зрения
func (h *DebugHandler) handleDumpEntities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Service.Entities())
}

// /debug/queue?n=16 - ближайшие ходы
func (h *DebugHandler) handleTurnQueue(w http.ResponseWriter, r *http.Request) {
	n := engine.UpcomingWindow
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = v
	}
	writeJSON(w, h.Service.Upcoming(n))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Пустой срез отдаём как [], а не null
	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
