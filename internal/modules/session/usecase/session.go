package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	sessionin "focuspulse/internal/modules/session/port/in"
	sessionout "focuspulse/internal/modules/session/port/out"
	"focuspulse/internal/modules/session/service"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/tx"
)

type Hooks struct {
	Notes    sessionout.NoteWriter
	Notifier sessionout.CompletionNotifier
}

// Interactor runs every load-modify-save cycle on the active session inside
// one write transaction. The TUI, the daemon and the CLI may share a database,
// each with its own ticker; mu only orders callers within this process.
type Interactor struct {
	mu          sync.Mutex
	svc         *service.SessionService
	activeStore sessionout.ActiveSessionStore
	archive     sessionout.ArchiveStore
	tx          tx.Manager
	hooks       Hooks
	logger      hclog.Logger
}

func NewInteractor(svc *service.SessionService, activeStore sessionout.ActiveSessionStore, archive sessionout.ArchiveStore, txm tx.Manager, hooks Hooks, logger hclog.Logger) sessionin.Usecase {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{svc: svc, activeStore: activeStore, archive: archive, tx: txm, hooks: hooks, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.svc.Now()
	session, err := i.svc.Start(now, input.TaskName, input.DurationMinutes, input.IdleThresholdSeconds)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}

	var expired *domain.Session
	err = i.tx.Within(ctx, func(txCtx context.Context) error {
		existing, err := i.activeStore.LoadActive(txCtx)
		switch {
		case err == nil:
			if !existing.Expired(now) {
				return apperrors.ErrActiveSessionExists
			}
			if err := i.settle(txCtx, &existing, now, domain.OutcomeCompleted); err != nil {
				return err
			}
			expired = &existing
		case !errors.Is(err, apperrors.ErrNoActiveSession):
			return err
		}
		return i.activeStore.SaveActive(txCtx, session)
	})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if expired != nil {
		i.finish(ctx, *expired, now)
	}
	i.logger.Info("session started", "session_id", session.ID, "task", session.TaskName, "planned", session.PlannedDuration.String())
	return toOutput(session, now), nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	session, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(session, i.svc.Now()), nil
}

func (i *Interactor) Tick(ctx context.Context) (sessiondto.TickOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var (
		session domain.Session
		now     time.Time
		done    bool
	)
	err := i.tx.Within(ctx, func(txCtx context.Context) error {
		var err error
		session, err = i.activeStore.LoadActive(txCtx)
		if err != nil {
			return err
		}
		now = i.svc.Now()
		session.Advance(now)
		if session.Expired(now) {
			done = true
			return i.settle(txCtx, &session, now, domain.OutcomeCompleted)
		}
		if session.CheckIdle(now) {
			i.logger.Debug("session idle", "session_id", session.ID)
		}
		return i.activeStore.SaveActive(txCtx, session)
	})
	if err != nil {
		return sessiondto.TickOutput{}, err
	}
	if done {
		summary := i.finish(ctx, session, now)
		return sessiondto.TickOutput{Session: summary.SessionOutput, Completed: true, Summary: &summary}, nil
	}
	return sessiondto.TickOutput{Session: toOutput(session, now)}, nil
}

func (i *Interactor) RecordVisibility(ctx context.Context, hidden bool) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, func(s *domain.Session, now time.Time) bool {
		changed := s.SetHidden(hidden, now)
		if changed && hidden {
			i.logger.Info("distraction", "session_id", s.ID, "count", s.Stats.Distractions)
		}
		return changed
	})
}

func (i *Interactor) RecordActivity(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, func(s *domain.Session, now time.Time) bool {
		s.MarkActivity(now)
		return true
	})
}

func (i *Interactor) Stop(ctx context.Context) (sessiondto.SummaryOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var (
		session domain.Session
		now     time.Time
	)
	err := i.tx.Within(ctx, func(txCtx context.Context) error {
		var err error
		session, err = i.activeStore.LoadActive(txCtx)
		if err != nil {
			return err
		}
		now = i.svc.Now()
		return i.settle(txCtx, &session, now, domain.OutcomeStopped)
	})
	if err != nil {
		return sessiondto.SummaryOutput{}, err
	}
	return i.finish(ctx, session, now), nil
}

// Recover settles whatever was running when the process last exited.
func (i *Interactor) Recover(ctx context.Context) (sessiondto.RecoverOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var (
		session domain.Session
		now     time.Time
		found   bool
		done    bool
	)
	err := i.tx.Within(ctx, func(txCtx context.Context) error {
		var err error
		session, err = i.activeStore.LoadActive(txCtx)
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		now = i.svc.Now()
		if session.Expired(now) {
			done = true
			return i.settle(txCtx, &session, now, domain.OutcomeCompleted)
		}
		session.Resume(now)
		return i.activeStore.SaveActive(txCtx, session)
	})
	switch {
	case err != nil:
		return sessiondto.RecoverOutput{}, err
	case !found:
		return sessiondto.RecoverOutput{}, nil
	case done:
		summary := i.finish(ctx, session, now)
		i.logger.Info("session expired while closed", "session_id", session.ID)
		return sessiondto.RecoverOutput{Found: true, Completed: true, Session: summary.SessionOutput, Summary: &summary}, nil
	}
	i.logger.Info("session resumed", "session_id", session.ID, "remaining", session.Remaining(now).String())
	return sessiondto.RecoverOutput{Found: true, Session: toOutput(session, now)}, nil
}

// Restore installs an imported session into the empty active slot.
func (i *Interactor) Restore(ctx context.Context, input sessiondto.RestoreInput) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.svc.Now()
	session, err := i.svc.Restore(now, input)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	err = i.tx.Within(ctx, func(txCtx context.Context) error {
		if _, err := i.activeStore.LoadActive(txCtx); err == nil {
			return apperrors.ErrActiveSessionExists
		} else if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return err
		}
		return i.activeStore.SaveActive(txCtx, session)
	})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	i.logger.Info("session restored", "session_id", session.ID)
	return toOutput(session, now), nil
}

// Discard drops the active session without archiving it.
func (i *Interactor) Discard(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.activeStore.ClearActive(ctx); err != nil {
		return err
	}
	i.logger.Info("active session discarded")
	return nil
}

func (i *Interactor) mutate(ctx context.Context, fn func(*domain.Session, time.Time) bool) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var (
		session domain.Session
		now     time.Time
	)
	err := i.tx.Within(ctx, func(txCtx context.Context) error {
		var err error
		session, err = i.activeStore.LoadActive(txCtx)
		if err != nil {
			return err
		}
		now = i.svc.Now()
		session.Advance(now)
		if !fn(&session, now) {
			return nil
		}
		return i.activeStore.SaveActive(txCtx, session)
	})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(session, now), nil
}

// settle scores the session, archives it and clears the active slot. It runs
// inside the caller's transaction.
func (i *Interactor) settle(txCtx context.Context, session *domain.Session, now time.Time, outcome domain.Outcome) error {
	if err := i.svc.Complete(session, now, outcome); err != nil {
		return err
	}
	if err := i.archive.Archive(txCtx, *session); err != nil {
		return err
	}
	return i.activeStore.ClearActive(txCtx)
}

// finish runs the best-effort hooks for a session settled by a committed
// transaction and builds its summary.
func (i *Interactor) finish(ctx context.Context, session domain.Session, now time.Time) sessiondto.SummaryOutput {
	i.logger.Info("session archived", "session_id", session.ID, "outcome", string(session.Outcome), "score", session.Score)

	out := toOutput(session, now)
	if i.hooks.Notes != nil {
		path, err := i.hooks.Notes.WriteNote(ctx, session)
		if err != nil {
			i.logger.Warn("write session note failed", "session_id", session.ID, "error", err)
		}
		out.NotePath = path
	}
	if i.hooks.Notifier != nil {
		if err := i.hooks.Notifier.NotifyCompleted(ctx, session); err != nil {
			i.logger.Warn("completion notify failed", "session_id", session.ID, "error", err)
		}
	}

	b := i.svc.Breakdown(session)
	return sessiondto.SummaryOutput{
		SessionOutput:      out,
		BaseScore:          b.Base,
		DistractionPenalty: b.DistractionPenalty,
		IdlePenalty:        b.IdlePenalty,
	}
}

func toOutput(s domain.Session, now time.Time) sessiondto.SessionOutput {
	events := make([]sessiondto.EventOutput, 0, len(s.Events))
	for _, ev := range s.Events {
		events = append(events, sessiondto.EventOutput{Type: string(ev.Type), At: ev.At})
	}
	remaining := time.Duration(0)
	if s.Active && !s.Expired(now) {
		remaining = s.Remaining(now)
	}
	return sessiondto.SessionOutput{
		ID:              s.ID,
		TaskName:        s.TaskName,
		Active:          s.Active,
		Status:          string(s.Status),
		PlannedDuration: s.PlannedDuration,
		IdleThreshold:   s.IdleThreshold,
		StartedAt:       s.StartedAt,
		EndsAt:          s.EndsAt,
		EndedAt:         s.EndedAt,
		Remaining:       remaining,
		Elapsed:         s.Stats.Elapsed,
		Distractions:    s.Stats.Distractions,
		IdleTime:        s.Stats.IdleTime,
		AwayTime:        s.Stats.AwayTime,
		Hidden:          s.Hidden,
		Score:           s.Score,
		Outcome:         string(s.Outcome),
		Events:          events,
	}
}
