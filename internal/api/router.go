package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	hclog "github.com/hashicorp/go-hclog"

	historyin "focuspulse/internal/modules/history/port/in"
	sessionin "focuspulse/internal/modules/session/port/in"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Sessions sessionin.Usecase
	History  historyin.Usecase
	DB       Pinger
	Logger   hclog.Logger
}

// NewRouter wires the localhost API. A browser page reports its own tab
// visibility and input activity through the /session routes.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(deps.DB, deps.Sessions)
	sessionH := NewSessionHandler(deps.Sessions)
	historyH := NewHistoryHandler(deps.History)

	r.Get("/health", healthH.Health)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", sessionH.Get)
		r.Post("/", sessionH.Start)
		r.Post("/visibility", sessionH.Visibility)
		r.Post("/activity", sessionH.Activity)
		r.Post("/stop", sessionH.Stop)
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", historyH.List)
		r.Delete("/", historyH.Reset)
		r.Get("/stats", historyH.Stats)
		r.Get("/tasks", historyH.Tasks)
		r.Get("/{id}", historyH.Get)
	})

	r.Get("/export", historyH.Export)
	r.Post("/import", historyH.Import)

	return r
}
