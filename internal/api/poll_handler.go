package api

import (
	"net/http"
)

// PollerStatusResponse — состояние poller'а.
type PollerStatusResponse struct {
	Monitor string `json:"monitor"`
	Active  bool   `json:"active"`
}

// GetPollerStatus возвращает Active/Suspended.
// GET /api/v1/poller
func (h *Handler) GetPollerStatus(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		Unavailable(w, "artifact publishing is disabled")
		return
	}

	Success(w, PollerStatusResponse{Monitor: h.poller.Name(), Active: h.poller.IsActive()})
}

// Poll выполняет один тик вне расписания.
// POST /api/v1/poller/poll?send_events=true
//
// По умолчанию dry-run. Тик выполняется и на неактивном экземпляре;
// блокировки партиций исключают двойную публикацию.
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		Unavailable(w, "artifact publishing is disabled")
		return
	}

	sendEvents := r.URL.Query().Get("send_events") == "true"
	Success(w, h.poller.Poll(r.Context(), sendEvents))
}
