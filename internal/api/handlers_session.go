package api

import (
	"net/http"

	sessiondto "focuspulse/internal/modules/session/dto"
	sessionin "focuspulse/internal/modules/session/port/in"
)

type startRequest struct {
	TaskName             string `json:"task_name"`
	DurationMinutes      int    `json:"duration_minutes"`
	IdleThresholdSeconds int    `json:"idle_threshold_seconds"`
}

type visibilityRequest struct {
	Hidden *bool `json:"hidden"`
}

type SessionHandler struct {
	sessions sessionin.Usecase
}

func NewSessionHandler(sessions sessionin.Usecase) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get handles GET /session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessions.GetActive(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Start handles POST /session
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	out, err := h.sessions.Start(r.Context(), sessiondto.StartInput{
		TaskName:             req.TaskName,
		DurationMinutes:      req.DurationMinutes,
		IdleThresholdSeconds: req.IdleThresholdSeconds,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// Visibility handles POST /session/visibility
func (h *SessionHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Hidden == nil {
		writeError(w, http.StatusBadRequest, "hidden is required")
		return
	}
	out, err := h.sessions.RecordVisibility(r.Context(), *req.Hidden)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Activity handles POST /session/activity
func (h *SessionHandler) Activity(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessions.RecordActivity(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Stop handles POST /session/stop
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessions.Stop(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
