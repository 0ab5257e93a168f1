package service

import (
	"fmt"
	"time"

	"focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	"focuspulse/internal/platform/clock"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/id"
)

type Defaults struct {
	IdleThreshold time.Duration
}

type SessionService struct {
	clock    clock.Clock
	idGen    id.Generator
	policy   domain.ScoringPolicy
	defaults Defaults
}

func NewSessionService(clock clock.Clock, idGen id.Generator, policy domain.ScoringPolicy, defaults Defaults) *SessionService {
	if defaults.IdleThreshold <= 0 {
		defaults.IdleThreshold = time.Minute
	}
	return &SessionService{clock: clock, idGen: idGen, policy: policy, defaults: defaults}
}

func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}

func (s *SessionService) Policy() domain.ScoringPolicy {
	return s.policy
}

// Start builds a new active session. A zero idle threshold falls back to
// the configured default.
func (s *SessionService) Start(now time.Time, taskName string, durationMinutes, idleThresholdSeconds int) (domain.Session, error) {
	if durationMinutes <= 0 {
		return domain.Session{}, fmt.Errorf("%w: duration must be a positive number of minutes", apperrors.ErrInvalidInput)
	}
	if idleThresholdSeconds < 0 {
		return domain.Session{}, fmt.Errorf("%w: idle threshold must not be negative", apperrors.ErrInvalidInput)
	}
	idle := time.Duration(idleThresholdSeconds) * time.Second
	if idle == 0 {
		idle = s.defaults.IdleThreshold
	}
	return domain.New(s.idGen.New(), taskName, time.Duration(durationMinutes)*time.Minute, idle, now)
}

// Restore rebuilds an imported active session. Activity tracking restarts at
// now; the original counters are kept. A missing threshold (browser exports
// write null for a blank idle field) falls back to the configured default.
func (s *SessionService) Restore(now time.Time, in sessiondto.RestoreInput) (domain.Session, error) {
	idle := in.IdleThreshold
	if idle <= 0 {
		idle = s.defaults.IdleThreshold
	}
	session, err := domain.New(in.ID, in.TaskName, in.PlannedDuration, idle, in.StartedAt)
	if err != nil {
		return domain.Session{}, err
	}
	if in.Distractions < 0 || in.IdleTime < 0 {
		return domain.Session{}, fmt.Errorf("%w: negative counters", apperrors.ErrInvalidInput)
	}
	session.Stats.Distractions = in.Distractions
	session.Stats.IdleTime = in.IdleTime
	for _, ev := range in.Events {
		session.Events = append(session.Events, domain.Event{Type: domain.EventType(ev.Type), At: ev.At})
	}
	if domain.Status(in.Status) == domain.StatusIdle {
		session.Status = domain.StatusIdle
	}
	session.Resume(now)
	return session, nil
}

func (s *SessionService) Complete(session *domain.Session, now time.Time, outcome domain.Outcome) error {
	return session.Complete(now, outcome, s.policy)
}

func (s *SessionService) Breakdown(session domain.Session) domain.ScoreBreakdown {
	return s.policy.Breakdown(session)
}
