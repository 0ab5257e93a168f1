package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"focuspulse/internal/modules/session/domain"
	sessionout "focuspulse/internal/modules/session/port/out"
	"focuspulse/internal/platform/clock"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/sqlitedb"
)

type activePayload struct {
	SchemaVersion int            `json:"schema_version"`
	Session       domain.Session `json:"session"`
}

// SQLiteActiveSessionStore keeps the running session as a JSON payload in a
// single-row table so it can be archived in the same transaction.
type SQLiteActiveSessionStore struct {
	db *sqlitedb.DB
}

func NewSQLiteActiveSessionStore(db *sqlitedb.DB) sessionout.ActiveSessionStore {
	return &SQLiteActiveSessionStore{db: db}
}

func (s *SQLiteActiveSessionStore) SaveActive(ctx context.Context, session domain.Session) error {
	if !session.Active {
		return fmt.Errorf("%w: session %s is not active", apperrors.ErrInvalidInput, session.ID)
	}
	conn := s.db.Conn(ctx)
	var archived int
	err := conn.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, session.ID).Scan(&archived)
	if err == nil {
		return fmt.Errorf("%w: session %s is already archived", apperrors.ErrConflict, session.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check archived session: %w", err)
	}

	payload, err := json.Marshal(activePayload{SchemaVersion: domain.SchemaVersion, Session: session})
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	_, err = conn.ExecContext(ctx, `
INSERT INTO active_session(slot, session_id, payload, updated_at)
VALUES (1, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
	session_id = excluded.session_id,
	payload = excluded.payload,
	updated_at = excluded.updated_at
`, session.ID, string(payload), clock.Millis(session.LastActivityAt))
	if err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	return nil
}

func (s *SQLiteActiveSessionStore) LoadActive(ctx context.Context) (domain.Session, error) {
	var raw string
	err := s.db.Conn(ctx).QueryRowContext(ctx, `SELECT payload FROM active_session WHERE slot = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read active session: %w", err)
	}
	payload := activePayload{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Session{}, fmt.Errorf("decode active session: %w", err)
	}
	if payload.Session.ID == "" || !payload.Session.Active {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	return payload.Session, nil
}

func (s *SQLiteActiveSessionStore) ClearActive(ctx context.Context) error {
	if _, err := s.db.Conn(ctx).ExecContext(ctx, `DELETE FROM active_session`); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
