package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"focuspulse/internal/modules/history/domain"
	historyout "focuspulse/internal/modules/history/port/out"
	"focuspulse/internal/platform/clock"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/sqlitedb"
)

const recordColumns = `id, task_name, task_slug, planned_ms, idle_threshold_ms, started_at, target_end_at,
	ended_at, elapsed_ms, idle_ms, away_ms, distractions, score, outcome, final_status`

// SQLiteStore reads the archive written by the session manager.
type SQLiteStore struct {
	db *sqlitedb.DB
}

func NewSQLiteStore(db *sqlitedb.DB) historyout.Store {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var (
		r                               domain.Record
		plannedMS, idleThresholdMS      int64
		startedAt, targetEndAt, endedAt int64
		elapsedMS, idleMS, awayMS       int64
	)
	err := row.Scan(&r.ID, &r.TaskName, &r.TaskSlug, &plannedMS, &idleThresholdMS, &startedAt, &targetEndAt,
		&endedAt, &elapsedMS, &idleMS, &awayMS, &r.Distractions, &r.Score, &r.Outcome, &r.FinalStatus)
	if err != nil {
		return domain.Record{}, err
	}
	r.PlannedDuration = time.Duration(plannedMS) * time.Millisecond
	r.IdleThreshold = time.Duration(idleThresholdMS) * time.Millisecond
	r.StartedAt = clock.FromMillis(startedAt)
	r.EndsAt = clock.FromMillis(targetEndAt)
	r.EndedAt = clock.FromMillis(endedAt)
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	r.IdleTime = time.Duration(idleMS) * time.Millisecond
	r.AwayTime = time.Duration(awayMS) * time.Millisecond
	r.Events = []domain.Event{}
	return r, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, `SELECT `+recordColumns+` FROM sessions ORDER BY started_at DESC, id LIMIT ?`, limit)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Record, error) {
	conn := s.db.Conn(ctx)
	record, err := scanRecord(conn.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("read session: %w", err)
	}
	events, err := s.events(ctx, `WHERE session_id = ?`, id)
	if err != nil {
		return domain.Record{}, err
	}
	record.Events = append(record.Events, events[id]...)
	return record, nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]domain.Record, error) {
	records, err := s.query(ctx, `SELECT `+recordColumns+` FROM sessions ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, err
	}
	events, err := s.events(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Events = append(records[i].Events, events[records[i].ID]...)
	}
	return records, nil
}

func (s *SQLiteStore) Totals(ctx context.Context) (domain.Totals, error) {
	var (
		totals  domain.Totals
		focusMS int64
	)
	err := s.db.Conn(ctx).QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(MAX(ended_at - started_at, 0)), 0), COALESCE(SUM(score), 0)
FROM sessions`).Scan(&totals.Sessions, &focusMS, &totals.ScoreSum)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("sum sessions: %w", err)
	}
	totals.Focus = time.Duration(focusMS) * time.Millisecond
	return totals, nil
}

// Tasks groups by slug. SQLite fills the bare task_name column from the row
// holding MAX(started_at), so each group shows its latest spelling.
func (s *SQLiteStore) Tasks(ctx context.Context) ([]domain.TaskSummary, error) {
	rows, err := s.db.Conn(ctx).QueryContext(ctx, `
SELECT task_slug, task_name, COUNT(*), COALESCE(SUM(MAX(ended_at - started_at, 0)), 0), COALESCE(SUM(score), 0), MAX(started_at)
FROM sessions
GROUP BY task_slug
ORDER BY MAX(started_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()
	out := []domain.TaskSummary{}
	for rows.Next() {
		var (
			t             domain.TaskSummary
			focusMS, last int64
		)
		if err := rows.Scan(&t.Slug, &t.TaskName, &t.Sessions, &focusMS, &t.ScoreSum, &last); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Focus = time.Duration(focusMS) * time.Millisecond
		t.LastStartedAt = clock.FromMillis(last)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Insert(ctx context.Context, records []domain.Record) (int, int, error) {
	inserted, skipped := 0, 0
	err := s.db.Within(ctx, func(txCtx context.Context) error {
		conn := s.db.Conn(txCtx)
		for _, r := range records {
			var exists int
			if err := conn.QueryRowContext(txCtx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, r.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check session: %w", err)
			}
			if exists > 0 {
				skipped++
				continue
			}
			if err := insertRecord(txCtx, conn, r); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, skipped, nil
}

func insertRecord(ctx context.Context, conn sqlitedb.Executor, r domain.Record) error {
	_, err := conn.ExecContext(ctx, `INSERT INTO sessions(`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TaskName, r.TaskSlug,
		r.PlannedDuration.Milliseconds(), r.IdleThreshold.Milliseconds(),
		clock.Millis(r.StartedAt), clock.Millis(r.EndsAt), clock.Millis(r.EndedAt),
		r.Elapsed.Milliseconds(), r.IdleTime.Milliseconds(), r.AwayTime.Milliseconds(),
		r.Distractions, r.Score, r.Outcome, r.FinalStatus,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", r.ID, err)
	}
	for seq, ev := range r.Events {
		if _, err := conn.ExecContext(ctx, `INSERT INTO session_events(session_id, seq, type, at) VALUES (?, ?, ?, ?)`,
			r.ID, seq, ev.Type, clock.Millis(ev.At)); err != nil {
			return fmt.Errorf("insert event for %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int, error) {
	deleted := 0
	err := s.db.Within(ctx, func(txCtx context.Context) error {
		conn := s.db.Conn(txCtx)
		if _, err := conn.ExecContext(txCtx, `DELETE FROM session_events`); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		res, err := conn.ExecContext(txCtx, `DELETE FROM sessions`)
		if err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count deleted sessions: %w", err)
		}
		deleted = int(n)
		return nil
	})
	return deleted, err
}

// query reads every row before returning; the pool has a single connection,
// so nothing else can run while rows are open.
func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.Conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	out := []domain.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) events(ctx context.Context, where string, args ...any) (map[string][]domain.Event, error) {
	q := strings.TrimSpace(`SELECT session_id, type, at FROM session_events ` + where + ` ORDER BY session_id, seq`)
	rows, err := s.db.Conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	out := map[string][]domain.Event{}
	for rows.Next() {
		var (
			sessionID, kind string
			at              int64
		)
		if err := rows.Scan(&sessionID, &kind, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out[sessionID] = append(out[sessionID], domain.Event{Type: kind, At: clock.FromMillis(at)})
	}
	return out, rows.Err()
}
