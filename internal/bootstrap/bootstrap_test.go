package bootstrap

import (
	"context"
	"testing"
	"time"

	sessiondto "focuspulse/internal/modules/session/dto"
	"focuspulse/internal/platform/config"
	"focuspulse/internal/platform/logging"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	app, err := New(cfg, Options{})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewWiresSessionIntoHistory(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	if _, err := app.Sessions.Start(ctx, sessiondto.StartInput{TaskName: "write report", DurationMinutes: 25}); err != nil {
		t.Fatalf("start: %v", err)
	}
	summary, err := app.Sessions.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if summary.TaskName != "write report" {
		t.Fatalf("unexpected task %q", summary.TaskName)
	}

	dash, err := app.History.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Sessions != 1 {
		t.Fatalf("expected one archived session, got %d", dash.Sessions)
	}
}

func TestServeReturnsWhenContextEnds(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, app, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestTickLoopStopsOnCancel(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tickLoop(ctx, app.Sessions, logging.Discard()); err != nil {
		t.Fatalf("tick loop: %v", err)
	}
}
