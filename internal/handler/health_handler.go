package handler

import (
	"net/http"

	"github.com/bagdasarian/campus-teams/internal/broker"
)

// Health отвечает 200, пока консьюмер работает или переподключается
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	state := broker.StateStopped
	if h.consumer != nil {
		state = h.consumer.State()
	}

	status := http.StatusOK
	body := HealthResponse{Status: "ok", Consumer: string(state)}
	if state == broker.StateStopped {
		status = http.StatusServiceUnavailable
		body.Status = "degraded"
	}

	writeJSON(w, status, body)
}
