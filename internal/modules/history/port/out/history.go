package out

import (
	"context"

	"focuspulse/internal/modules/history/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
)

type Store interface {
	// List returns records newest first without events. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.Record, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	// All returns every record with its events, newest first.
	All(ctx context.Context) ([]domain.Record, error)
	Totals(ctx context.Context) (domain.Totals, error)
	Tasks(ctx context.Context) ([]domain.TaskSummary, error)
	// Insert stores records whose ids are new and reports how many were skipped.
	Insert(ctx context.Context, records []domain.Record) (inserted, skipped int, err error)
	DeleteAll(ctx context.Context) (int, error)
}

// ActiveSessions is the slice of the session manager that export, import
// and reset need.
type ActiveSessions interface {
	GetActive(ctx context.Context) (sessiondto.SessionOutput, error)
	Restore(ctx context.Context, input sessiondto.RestoreInput) (sessiondto.SessionOutput, error)
	Discard(ctx context.Context) error
}
