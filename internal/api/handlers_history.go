package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	historyin "focuspulse/internal/modules/history/port/in"
)

type HistoryHandler struct {
	history historyin.Usecase
}

func NewHistoryHandler(history historyin.Usecase) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /history?limit=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	rows, err := h.history.List(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.history.Dashboard(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HistoryHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	out, err := h.history.Tasks(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Reset handles DELETE /history. The caller is expected to have confirmed.
func (h *HistoryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	out, err := h.history.Reset(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	raw, err := h.history.Export(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="focuspulse-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *HistoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	out, err := h.history.Import(r.Context(), raw)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
