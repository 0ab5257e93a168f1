package out

import (
	"context"
	"fmt"

	"focuspulse/internal/modules/session/domain"
	sessionout "focuspulse/internal/modules/session/port/out"
	"focuspulse/internal/platform/clock"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/slug"
	"focuspulse/internal/platform/sqlitedb"
)

type SQLiteArchiveStore struct {
	db *sqlitedb.DB
}

func NewSQLiteArchiveStore(db *sqlitedb.DB) sessionout.ArchiveStore {
	return &SQLiteArchiveStore{db: db}
}

func (s *SQLiteArchiveStore) Archive(ctx context.Context, session domain.Session) error {
	if session.Active {
		return fmt.Errorf("%w: session %s is still active", apperrors.ErrInvalidInput, session.ID)
	}
	return s.db.Within(ctx, func(txCtx context.Context) error {
		conn := s.db.Conn(txCtx)
		var exists int
		if err := conn.QueryRowContext(txCtx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, session.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: session %s already archived", apperrors.ErrConflict, session.ID)
		}
		_, err := conn.ExecContext(txCtx, `
INSERT INTO sessions(
	id, task_name, task_slug, planned_ms, idle_threshold_ms, started_at, target_end_at,
	ended_at, elapsed_ms, idle_ms, away_ms, distractions, score, outcome, final_status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			session.ID,
			session.TaskName,
			slug.Make(session.TaskName),
			session.PlannedDuration.Milliseconds(),
			session.IdleThreshold.Milliseconds(),
			clock.Millis(session.StartedAt),
			clock.Millis(session.EndsAt),
			clock.Millis(session.EndedAt),
			session.Stats.Elapsed.Milliseconds(),
			session.Stats.IdleTime.Milliseconds(),
			session.Stats.AwayTime.Milliseconds(),
			session.Stats.Distractions,
			session.Score,
			string(session.Outcome),
			string(session.Status),
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		for seq, ev := range session.Events {
			if _, err := conn.ExecContext(txCtx, `INSERT INTO session_events(session_id, seq, type, at) VALUES (?, ?, ?, ?)`,
				session.ID, seq, string(ev.Type), clock.Millis(ev.At)); err != nil {
				return fmt.Errorf("insert session event: %w", err)
			}
		}
		return nil
	})
}
