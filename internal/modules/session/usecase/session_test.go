package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sessionout "focuspulse/internal/modules/session/adapter/out"
	"focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	sessionin "focuspulse/internal/modules/session/port/in"
	"focuspulse/internal/modules/session/service"
	"focuspulse/internal/modules/session/usecase"
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

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "sess-" + string(rune('0'+g.n))
}

type recordingNotifier struct {
	calls []domain.Session
	err   error
}

func (n *recordingNotifier) NotifyCompleted(_ context.Context, s domain.Session) error {
	n.calls = append(n.calls, s)
	return n.err
}

type fixture struct {
	db    *sqlitedb.DB
	clock *fakeClock
	ids   *seqIDs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "focuspulse.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &fixture{db: db, clock: &fakeClock{now: t0}, ids: &seqIDs{}}
}

func (f *fixture) interactor(hooks usecase.Hooks) sessionin.Usecase {
	svc := service.NewSessionService(f.clock, f.ids, domain.DefaultScoringPolicy(), service.Defaults{IdleThreshold: time.Minute})
	return usecase.NewInteractor(svc, sessionout.NewSQLiteActiveSessionStore(f.db), sessionout.NewSQLiteArchiveStore(f.db), f.db, hooks, logging.Discard())
}

func (f *fixture) archivedCount(t *testing.T) int {
	t.Helper()
	ctx := context.Background()
	var n int
	if err := f.db.Conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	return n
}

func TestStartValidatesAndAllowsOneActiveSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	uc := f.interactor(usecase.Hooks{})
	ctx := context.Background()

	bad := []sessiondto.StartInput{
		{TaskName: "  ", DurationMinutes: 25},
		{TaskName: "Write", DurationMinutes: 0},
		{TaskName: "Write", DurationMinutes: 25, IdleThresholdSeconds: -1},
	}
	for _, in := range bad {
		if _, err := uc.Start(ctx, in); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
	if _, err := uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("invalid starts must not create a session, got %v", err)
	}

	out, err := uc.Start(ctx, sessiondto.StartInput{TaskName: " Write report ", DurationMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out.TaskName != "Write report" || out.Remaining != 25*time.Minute || out.IdleThreshold != time.Minute || out.Status != "FOCUSED" {
		t.Fatalf("unexpected start output: %+v", out)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Other", DurationMinutes: 5}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	active, err := uc.GetActive(ctx)
	if err != nil || active.ID != out.ID {
		t.Fatalf("expected first session to stay active: %+v %v", active, err)
	}
}

func TestTickCompletesAndArchivesOnExpiry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	uc := f.interactor(usecase.Hooks{})
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Sprint", DurationMinutes: 1}); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Set(30 * time.Second)
	tick, err := uc.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if tick.Completed || tick.Session.Remaining != 30*time.Second || tick.Session.Elapsed != 30*time.Second {
		t.Fatalf("unexpected mid-session tick: %+v", tick)
	}

	f.clock.Set(61 * time.Second)
	tick, err = uc.Tick(ctx)
	if err != nil {
		t.Fatalf("final tick: %v", err)
	}
	if !tick.Completed || tick.Summary == nil {
		t.Fatalf("expected completion, got %+v", tick)
	}
	if tick.Summary.Score != 100 || tick.Summary.Outcome != "completed" || !tick.Summary.EndedAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("unexpected summary: %+v", tick.Summary)
	}
	if tick.Summary.Active {
		t.Fatalf("archived session must not be active")
	}
	if _, err := uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after completion, got %v", err)
	}
	if n := f.archivedCount(t); n != 1 {
		t.Fatalf("expected one archived session, got %d", n)
	}
	if _, err := uc.Tick(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("tick without session should report ErrNoActiveSession, got %v", err)
	}
}

func TestVisibilityActivityAndStopScore(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	uc := f.interactor(usecase.Hooks{})
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Read", DurationMinutes: 10, IdleThresholdSeconds: 5}); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Set(10 * time.Second)
	out, err := uc.RecordVisibility(ctx, true)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if out.Distractions != 1 || !out.Hidden {
		t.Fatalf("expected one distraction, got %+v", out)
	}
	f.clock.Set(20 * time.Second)
	if out, _ = uc.RecordVisibility(ctx, true); out.Distractions != 1 {
		t.Fatalf("duplicate hide must not count, got %d", out.Distractions)
	}
	f.clock.Set(40 * time.Second)
	if out, _ = uc.RecordVisibility(ctx, false); out.AwayTime != 30*time.Second {
		t.Fatalf("expected 30s away, got %s", out.AwayTime)
	}
	if _, err := uc.RecordActivity(ctx); err != nil {
		t.Fatalf("activity: %v", err)
	}

	for _, sec := range []int{46, 47, 48} {
		f.clock.Set(time.Duration(sec) * time.Second)
		tick, err := uc.Tick(ctx)
		if err != nil {
			t.Fatalf("tick at %ds: %v", sec, err)
		}
		if tick.Session.Status != "IDLE" {
			t.Fatalf("expected IDLE at %ds, got %s", sec, tick.Session.Status)
		}
	}
	f.clock.Set(50 * time.Second)
	out, err = uc.RecordActivity(ctx)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if out.Status != "FOCUSED" || out.IdleTime != 5*time.Second {
		t.Fatalf("expected focused with 5s idle, got %s %s", out.Status, out.IdleTime)
	}

	f.clock.Set(time.Minute)
	summary, err := uc.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	// base 10, penalty 5 + 2*5/60
	if summary.Score != 5 || summary.Outcome != "stopped" || summary.BaseScore != 10 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	wantEvents := []string{"DISTRACTION_START", "DISTRACTION_END", "IDLE_START", "IDLE_END"}
	if len(summary.Events) != len(wantEvents) {
		t.Fatalf("expected %d events, got %+v", len(wantEvents), summary.Events)
	}
	for i, ev := range summary.Events {
		if ev.Type != wantEvents[i] {
			t.Fatalf("event %d: expected %s, got %s", i, wantEvents[i], ev.Type)
		}
	}
	if _, err := uc.Stop(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("second stop should fail with ErrNoActiveSession, got %v", err)
	}
	if _, err := uc.RecordVisibility(ctx, true); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("visibility without session should fail with ErrNoActiveSession, got %v", err)
	}
}

func TestRecoverCompletesSessionThatExpiredWhileClosed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	first := f.interactor(usecase.Hooks{})
	if out, err := first.Recover(ctx); err != nil || out.Found {
		t.Fatalf("recover on empty store: %+v %v", out, err)
	}
	if _, err := first.Start(ctx, sessiondto.StartInput{TaskName: "Plan", DurationMinutes: 1}); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.Set(3 * time.Hour)
	restarted := f.interactor(usecase.Hooks{})
	out, err := restarted.Recover(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !out.Found || !out.Completed || out.Summary == nil {
		t.Fatalf("expected completed recovery, got %+v", out)
	}
	if out.Summary.Score != 100 || !out.Summary.EndedAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("expected clamped end and full score, got %+v", out.Summary)
	}
	if n := f.archivedCount(t); n != 1 {
		t.Fatalf("expected one archived session, got %d", n)
	}
}

func TestRecoverResumesLiveSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uc := f.interactor(usecase.Hooks{})
	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Code", DurationMinutes: 25, IdleThresholdSeconds: 5}); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.Set(2 * time.Minute)
	out, err := f.interactor(usecase.Hooks{}).Recover(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !out.Found || out.Completed || out.Session.Remaining != 23*time.Minute {
		t.Fatalf("expected resumed session, got %+v", out)
	}
	f.clock.Set(2*time.Minute + time.Second)
	tick, err := uc.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if tick.Session.Status != "FOCUSED" || tick.Session.IdleTime != 0 {
		t.Fatalf("closed time must not count as idle: %+v", tick.Session)
	}
}

func TestStartArchivesExpiredSessionFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uc := f.interactor(usecase.Hooks{})
	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Old", DurationMinutes: 1}); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Set(5 * time.Minute)
	out, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "New", DurationMinutes: 25})
	if err != nil {
		t.Fatalf("start after expiry: %v", err)
	}
	if out.TaskName != "New" {
		t.Fatalf("unexpected session %+v", out)
	}
	if n := f.archivedCount(t); n != 1 {
		t.Fatalf("expected expired session archived, got %d", n)
	}
}

func TestCompletionHooksAreBestEffort(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	notesDir := t.TempDir()
	notifier := &recordingNotifier{err: errors.New("plugin offline")}
	uc := f.interactor(usecase.Hooks{Notes: sessionout.NewMarkdownNoteWriter(notesDir, time.UTC), Notifier: notifier})

	if _, err := uc.Start(ctx, sessiondto.StartInput{TaskName: "Write report", DurationMinutes: 25}); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Set(5 * time.Minute)
	summary, err := uc.Stop(ctx)
	if err != nil {
		t.Fatalf("stop must succeed despite notifier failure: %v", err)
	}
	if summary.NotePath == "" {
		t.Fatalf("expected note path in summary")
	}
	if _, err := os.Stat(summary.NotePath); err != nil {
		t.Fatalf("expected note file: %v", err)
	}
	if filepath.Base(summary.NotePath) != "090000-write-report.md" {
		t.Fatalf("unexpected note name %s", summary.NotePath)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].Score != summary.Score || notifier.calls[0].Active {
		t.Fatalf("expected one notification for the archived session, got %+v", notifier.calls)
	}
}

func TestRestoreOnlyFillsEmptySlot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uc := f.interactor(usecase.Hooks{})

	f.clock.Set(10 * time.Minute)
	restored, err := uc.Restore(ctx, sessiondto.RestoreInput{
		ID:              "imported-1",
		TaskName:        "Imported",
		PlannedDuration: 25 * time.Minute,
		IdleThreshold:   30 * time.Second,
		StartedAt:       t0,
		Status:          "IDLE",
		Distractions:    2,
		IdleTime:        90 * time.Second,
		Events:          []sessiondto.EventOutput{{Type: "DISTRACTION_START", At: t0.Add(time.Minute)}},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Remaining != 15*time.Minute || restored.Distractions != 2 || restored.IdleTime != 90*time.Second || len(restored.Events) != 1 {
		t.Fatalf("unexpected restored session: %+v", restored)
	}
	if _, err := uc.Restore(ctx, sessiondto.RestoreInput{ID: "x", TaskName: "y", PlannedDuration: time.Minute, IdleThreshold: time.Second, StartedAt: t0}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if err := uc.Discard(ctx); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected empty slot after discard, got %v", err)
	}
	if n := f.archivedCount(t); n != 0 {
		t.Fatalf("discard must not archive, got %d", n)
	}
}

func TestVisibilityIsNotLostToTicksFromAnotherHandle(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "focuspulse.db")
	clock := &fakeClock{now: t0}
	ids := &seqIDs{}
	open := func() sessionin.Usecase {
		db, err := sqlitedb.Open(path)
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		svc := service.NewSessionService(clock, ids, domain.DefaultScoringPolicy(), service.Defaults{IdleThreshold: time.Minute})
		return usecase.NewInteractor(svc, sessionout.NewSQLiteActiveSessionStore(db), sessionout.NewSQLiteArchiveStore(db), db, usecase.Hooks{}, logging.Discard())
	}
	tui := open()
	daemon := open()
	ctx := context.Background()

	if _, err := tui.Start(ctx, sessiondto.StartInput{TaskName: "Shared", DurationMinutes: 25}); err != nil {
		t.Fatalf("start: %v", err)
	}

	stop := make(chan struct{})
	tickErr := make(chan error, 1)
	go func() {
		for {
			select {
			case <-stop:
				tickErr <- nil
				return
			default:
			}
			if _, err := daemon.Tick(ctx); err != nil {
				tickErr <- err
				return
			}
		}
	}()

	const cycles = 100
	var visErr error
	for n := 0; n < cycles && visErr == nil; n++ {
		if _, visErr = tui.RecordVisibility(ctx, true); visErr == nil {
			_, visErr = tui.RecordVisibility(ctx, false)
		}
	}
	close(stop)
	if err := <-tickErr; err != nil {
		t.Fatalf("tick: %v", err)
	}
	if visErr != nil {
		t.Fatalf("visibility: %v", visErr)
	}

	out, err := daemon.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if out.Distractions != cycles {
		t.Fatalf("expected %d distractions, got %d", cycles, out.Distractions)
	}
}
