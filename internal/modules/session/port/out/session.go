package out

import (
	"context"

	"focuspulse/internal/modules/session/domain"
)

// ActiveSessionStore holds at most one running session.
type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.Session) error
	LoadActive(ctx context.Context) (domain.Session, error)
	ClearActive(ctx context.Context) error
}

// ArchiveStore persists completed sessions.
type ArchiveStore interface {
	Archive(ctx context.Context, session domain.Session) error
}

type NoteWriter interface {
	WriteNote(ctx context.Context, session domain.Session) (string, error)
}

// CompletionNotifier is told about archived sessions. Delivery is best effort.
type CompletionNotifier interface {
	NotifyCompleted(ctx context.Context, session domain.Session) error
}
