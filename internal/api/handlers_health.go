package api

import (
	"errors"
	"net/http"

	sessionin "focuspulse/internal/modules/session/port/in"
	apperrors "focuspulse/internal/platform/errors"
)

type healthResponse struct {
	Status        string `json:"status"`
	DB            string `json:"db"`
	ActiveSession bool   `json:"active_session"`
	Message       string `json:"message,omitempty"`
}

type HealthHandler struct {
	db       Pinger
	sessions sessionin.Usecase
}

func NewHealthHandler(db Pinger, sessions sessionin.Usecase) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", DB: "ok"}
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.DB = "error"
			resp.Message = err.Error()
		}
	}
	if h.sessions != nil {
		_, err := h.sessions.GetActive(r.Context())
		switch {
		case err == nil:
			resp.ActiveSession = true
		case !errors.Is(err, apperrors.ErrNoActiveSession):
			resp.Status = "degraded"
			resp.Message = err.Error()
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
