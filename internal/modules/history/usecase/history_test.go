package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	historyout "focuspulse/internal/modules/history/adapter/out"
	"focuspulse/internal/modules/history/domain"
	historyin "focuspulse/internal/modules/history/port/in"
	"focuspulse/internal/modules/history/usecase"
	sessionout "focuspulse/internal/modules/session/adapter/out"
	sessiondomain "focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	sessionin "focuspulse/internal/modules/session/port/in"
	sessionservice "focuspulse/internal/modules/session/service"
	sessionusecase "focuspulse/internal/modules/session/usecase"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/logging"
	"focuspulse/internal/platform/sqlitedb"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(offset time.Duration) {
	c.mu.Lock()
	c.now = t0.Add(offset)
	c.mu.Unlock()
}

type counterIDs struct {
	mu sync.Mutex
	n  int
}

func (g *counterIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("s-%02d", g.n)
}

type fixture struct {
	clock    *fakeClock
	sessions sessionin.Usecase
	history  historyin.Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "focuspulse.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	clk := &fakeClock{now: t0}
	svc := sessionservice.NewSessionService(clk, &counterIDs{}, sessiondomain.DefaultScoringPolicy(), sessionservice.Defaults{IdleThreshold: time.Minute})
	sessions := sessionusecase.NewInteractor(svc, sessionout.NewSQLiteActiveSessionStore(db), sessionout.NewSQLiteArchiveStore(db), db, sessionusecase.Hooks{}, logging.Discard())
	return &fixture{
		clock:    clk,
		sessions: sessions,
		history:  usecase.NewInteractor(historyout.NewSQLiteStore(db), sessions, logging.Discard()),
	}
}

// run starts a session at offset and stops it after focus.
func (f *fixture) run(t *testing.T, offset time.Duration, task string, minutes int, focus time.Duration, distractions int) {
	t.Helper()
	ctx := context.Background()
	f.clock.Set(offset)
	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{TaskName: task, DurationMinutes: minutes}); err != nil {
		t.Fatalf("start %s: %v", task, err)
	}
	for i := 0; i < distractions; i++ {
		f.clock.Set(offset + time.Duration(i+1)*time.Second)
		if _, err := f.sessions.RecordVisibility(ctx, true); err != nil {
			t.Fatalf("hide: %v", err)
		}
		if _, err := f.sessions.RecordVisibility(ctx, false); err != nil {
			t.Fatalf("show: %v", err)
		}
	}
	f.clock.Set(offset + focus)
	if _, err := f.sessions.Stop(ctx); err != nil {
		t.Fatalf("stop %s: %v", task, err)
	}
}

func TestDashboardEmptyState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	dash, err := f.history.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Sessions != 0 || dash.TotalFocusLabel != "0h 0m" || dash.AverageLabel != "-" {
		t.Fatalf("unexpected empty dashboard: %+v", dash)
	}
	rows, err := f.history.List(context.Background(), 0)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no rows, got %v %v", rows, err)
	}
}

func TestListDashboardTasksAndGet(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.run(t, 0, "Write report", 25, 25*time.Minute, 1)            // 100 - 5 = 95
	f.run(t, time.Hour, "Review", 60, 30*time.Minute, 0)          // 50
	f.run(t, 2*time.Hour, "write  REPORT", 50, 50*time.Minute, 2) // 100 - 10 = 90

	rows, err := f.history.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].TaskName != "write  REPORT" || rows[1].TaskName != "Review" {
		t.Fatalf("expected newest first with limit, got %+v", rows)
	}

	dash, err := f.history.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	// 25 + 30 + 50 minutes; (95+50+90)/3 = 78.33
	if dash.Sessions != 3 || dash.TotalFocusLabel != "1h 45m" || dash.AverageScore != 78 || dash.AverageLabel != "78" {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}

	tasks, err := f.history.Tasks(ctx)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected two task groups, got %+v", tasks)
	}
	if tasks[0].Slug != "write-report" || tasks[0].TaskName != "write  REPORT" || tasks[0].Sessions != 2 || tasks[0].TotalFocusLabel != "1h 15m" || tasks[0].AverageScore != 93 {
		t.Fatalf("unexpected first task group: %+v", tasks[0])
	}

	detail, err := f.history.Get(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Events) != 4 || detail.Events[0].Type != "DISTRACTION_START" || detail.Score != 90 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if _, err := f.history.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.history.Get(ctx, " "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	src := newFixture(t)
	ctx := context.Background()
	src.run(t, 0, "Write report", 25, 10*time.Minute, 1)
	src.clock.Set(time.Hour)
	if _, err := src.sessions.Start(ctx, sessiondto.StartInput{TaskName: "Still going", DurationMinutes: 25}); err != nil {
		t.Fatalf("start: %v", err)
	}

	raw, err := src.history.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	doc := domain.LegacyDocument{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.Sessions) != 1 || doc.ActiveSession == nil || !doc.ActiveSession.IsActive {
		t.Fatalf("unexpected export document: %s", raw)
	}
	if !strings.Contains(string(raw), `"plannedDurationMs": 1500000`) || !strings.Contains(string(raw), `"actualEndTime"`) {
		t.Fatalf("export must use the camelCase millisecond schema:\n%s", raw)
	}

	dst := newFixture(t)
	dst.clock.Set(time.Hour + time.Minute)
	out, err := dst.history.Import(ctx, raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Imported != 1 || out.Skipped != 0 || !out.ActiveRestored {
		t.Fatalf("unexpected import result: %+v", out)
	}
	active, err := dst.sessions.GetActive(ctx)
	if err != nil || active.TaskName != "Still going" || active.Remaining != 24*time.Minute {
		t.Fatalf("expected restored active session, got %+v %v", active, err)
	}

	again, err := dst.history.Import(ctx, raw)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again.Imported != 0 || again.Skipped != 1 || again.ActiveRestored || len(again.Warnings) != 1 {
		t.Fatalf("re-import must skip known ids and keep the local active session: %+v", again)
	}

	if _, err := dst.history.Import(ctx, []byte("{not json")); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad json, got %v", err)
	}
}

func TestImportRestoresActiveSessionWithBlankIdleThreshold(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(5 * time.Minute)

	raw := fmt.Sprintf(`{
  "sessions": [],
  "activeSession": {
    "id": "browser-1",
    "taskName": "Read chapter",
    "plannedDurationMs": 1500000,
    "idleThresholdMs": null,
    "startTime": %d,
    "endTime": %d,
    "isActive": true,
    "status": "FOCUSED",
    "stats": {"distractions": 1, "idleTimeMs": 0, "elapsedTimeMs": 240000},
    "events": [{"type": "DISTRACTION_START", "timestamp": %d}],
    "actualEndTime": null,
    "score": null
  }
}`, t0.UnixMilli(), t0.Add(25*time.Minute).UnixMilli(), t0.Add(time.Minute).UnixMilli())

	out, err := f.history.Import(ctx, []byte(raw))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !out.ActiveRestored || len(out.Warnings) != 0 {
		t.Fatalf("expected active session restored, got %+v", out)
	}
	active, err := f.sessions.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.IdleThreshold != time.Minute || active.Distractions != 1 {
		t.Fatalf("expected default idle threshold, got %+v", active)
	}
}

func TestResetClearsHistoryAndActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.run(t, 0, "One", 5, 5*time.Minute, 0)
	f.run(t, time.Hour, "Two", 5, 5*time.Minute, 0)
	f.clock.Set(2 * time.Hour)
	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{TaskName: "Three", DurationMinutes: 5}); err != nil {
		t.Fatalf("start: %v", err)
	}

	out, err := f.history.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if out.DeletedSessions != 2 || !out.ClearedActive {
		t.Fatalf("unexpected reset result: %+v", out)
	}
	if _, err := f.sessions.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected active session cleared, got %v", err)
	}
	dash, _ := f.history.Dashboard(ctx)
	if dash.Sessions != 0 {
		t.Fatalf("expected empty history, got %+v", dash)
	}
	if again, err := f.history.Reset(ctx); err != nil || again.DeletedSessions != 0 || again.ClearedActive {
		t.Fatalf("reset on empty store: %+v %v", again, err)
	}
}
