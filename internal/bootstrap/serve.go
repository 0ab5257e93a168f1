package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/oklog/run"

	"focuspulse/internal/api"
	sessionin "focuspulse/internal/modules/session/port/in"
	apperrors "focuspulse/internal/platform/errors"
)

const (
	tickInterval    = time.Second
	shutdownTimeout = 5 * time.Second
)

// Serve runs the localhost API next to the session clock until ctx ends or
// the process is signalled.
func Serve(ctx context.Context, app *App, addr string) error {
	logger := app.Logger.Named("serve")

	if out, err := app.Sessions.Recover(ctx); err != nil {
		return fmt.Errorf("recover session: %w", err)
	} else if out.Completed {
		logger.Info("session finished while stopped", "session_id", out.Session.ID, "score", out.Session.Score)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler: api.NewRouter(api.Deps{
			Sessions: app.Sessions,
			History:  app.History,
			DB:       app.DB,
			Logger:   app.Logger.Named("api"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var g run.Group
	g.Add(func() error {
		logger.Info("listening", "addr", ln.Addr().String())
		return srv.Serve(ln)
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	tickCtx, cancelTick := context.WithCancel(ctx)
	g.Add(func() error {
		return tickLoop(tickCtx, app.Sessions, logger)
	}, func(error) {
		cancelTick()
	})

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sigErr run.SignalError
	switch {
	case errors.As(err, &sigErr):
		logger.Info("shutting down", "signal", sigErr.Signal.String())
		return nil
	case errors.Is(err, http.ErrServerClosed), errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

// tickLoop advances the active session once per interval so a session
// driven only through the API still expires and goes idle.
func tickLoop(ctx context.Context, sessions sessionin.Usecase, logger hclog.Logger) error {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			out, err := sessions.Tick(ctx)
			switch {
			case errors.Is(err, apperrors.ErrNoActiveSession):
			case err != nil:
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("tick failed", "error", err)
			case out.Completed:
				logger.Info("session completed", "session_id", out.Session.ID, "score", out.Session.Score)
			}
		}
	}
}
