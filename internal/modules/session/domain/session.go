package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "focuspulse/internal/platform/errors"
)

const SchemaVersion = 1

type Status string

const (
	StatusFocused Status = "FOCUSED"
	StatusIdle    Status = "IDLE"
)

type EventType string

const (
	EventDistractionStart EventType = "DISTRACTION_START"
	EventDistractionEnd   EventType = "DISTRACTION_END"
	EventIdleStart        EventType = "IDLE_START"
	EventIdleEnd          EventType = "IDLE_END"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
)

type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
}

type Stats struct {
	Distractions int           `json:"distractions"`
	IdleTime     time.Duration `json:"idle_time"`
	Elapsed      time.Duration `json:"elapsed"`
	AwayTime     time.Duration `json:"away_time"`
}

// Session is one focus attempt. While Active it lives in the active slot;
// once completed it is archived and never becomes active again.
type Session struct {
	ID              string        `json:"id"`
	TaskName        string        `json:"task_name"`
	PlannedDuration time.Duration `json:"planned_duration"`
	IdleThreshold   time.Duration `json:"idle_threshold"`
	StartedAt       time.Time     `json:"started_at"`
	EndsAt          time.Time     `json:"ends_at"`
	Active          bool          `json:"active"`
	Status          Status        `json:"status"`
	Stats           Stats         `json:"stats"`
	Events          []Event       `json:"events"`
	LastActivityAt  time.Time     `json:"last_activity_at"`
	IdleAccruedAt   time.Time     `json:"idle_accrued_at,omitempty"`
	Hidden          bool          `json:"hidden"`
	HiddenSince     time.Time     `json:"hidden_since,omitempty"`
	EndedAt         time.Time     `json:"ended_at,omitempty"`
	Score           int           `json:"score"`
	Outcome         Outcome       `json:"outcome,omitempty"`
}

func New(id, taskName string, planned, idleThreshold time.Duration, now time.Time) (Session, error) {
	taskName = strings.TrimSpace(taskName)
	if id == "" {
		return Session{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if taskName == "" {
		return Session{}, fmt.Errorf("%w: task name is required", apperrors.ErrInvalidInput)
	}
	if planned <= 0 {
		return Session{}, fmt.Errorf("%w: duration must be positive", apperrors.ErrInvalidInput)
	}
	if idleThreshold <= 0 {
		return Session{}, fmt.Errorf("%w: idle threshold must be positive", apperrors.ErrInvalidInput)
	}
	return Session{
		ID:              id,
		TaskName:        taskName,
		PlannedDuration: planned,
		IdleThreshold:   idleThreshold,
		StartedAt:       now,
		EndsAt:          now.Add(planned),
		Active:          true,
		Status:          StatusFocused,
		Events:          []Event{},
		LastActivityAt:  now,
	}, nil
}

func (s Session) Remaining(now time.Time) time.Duration {
	return s.EndsAt.Sub(now)
}

func (s Session) Expired(now time.Time) bool {
	return s.Remaining(now) <= 0
}

// Duration is the wall time between start and actual end.
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return s.Stats.Elapsed
	}
	return nonNegative(s.EndedAt.Sub(s.StartedAt))
}

// Advance refreshes the elapsed counter.
func (s *Session) Advance(now time.Time) {
	s.Stats.Elapsed = nonNegative(now.Sub(s.StartedAt))
}

// SetHidden records a visibility change and reports whether anything changed.
// Losing visibility counts one distraction.
func (s *Session) SetHidden(hidden bool, now time.Time) bool {
	if !s.Active || hidden == s.Hidden {
		return false
	}
	if hidden {
		s.Stats.Distractions++
		s.Hidden = true
		s.HiddenSince = now
		s.log(EventDistractionStart, now)
		return true
	}
	s.closeAway(now)
	s.log(EventDistractionEnd, now)
	return true
}

// MarkActivity resets the idle clock. It reports whether the session left IDLE.
func (s *Session) MarkActivity(now time.Time) bool {
	if !s.Active {
		return false
	}
	s.LastActivityAt = now
	if s.Status != StatusIdle {
		return false
	}
	s.accrueIdle(now)
	s.Status = StatusFocused
	s.IdleAccruedAt = time.Time{}
	s.log(EventIdleEnd, now)
	return true
}

// CheckIdle flips FOCUSED to IDLE once the threshold is exceeded and, while
// idle, accrues the time since the previous check. Idle time starts counting
// where the threshold ran out, so the flipping check accrues too. It reports
// whether the status changed.
func (s *Session) CheckIdle(now time.Time) bool {
	if !s.Active || now.Sub(s.LastActivityAt) <= s.IdleThreshold {
		return false
	}
	if s.Status == StatusFocused {
		s.Status = StatusIdle
		s.IdleAccruedAt = s.LastActivityAt.Add(s.IdleThreshold)
		s.accrueIdle(now)
		s.log(EventIdleStart, now)
		return true
	}
	s.accrueIdle(now)
	return false
}

// Resume restarts activity tracking after the process was away. Time that
// passed while nothing was watching is not counted as idle.
func (s *Session) Resume(now time.Time) {
	s.LastActivityAt = now
	if s.Status == StatusIdle {
		s.IdleAccruedAt = now
	}
	s.Advance(now)
}

// Complete deactivates the session and scores it. A natural finish is
// clamped to the planned end so time spent closed past expiry is not counted.
func (s *Session) Complete(now time.Time, outcome Outcome, policy ScoringPolicy) error {
	if !s.Active {
		return apperrors.ErrNoActiveSession
	}
	end := now
	if outcome == OutcomeCompleted && end.After(s.EndsAt) {
		end = s.EndsAt
	}
	if end.Before(s.StartedAt) {
		end = s.StartedAt
	}
	if s.Status == StatusIdle {
		s.accrueIdle(end)
	}
	if s.Hidden {
		s.closeAway(end)
	}
	s.Active = false
	s.EndedAt = end
	s.Outcome = outcome
	s.Stats.Elapsed = nonNegative(end.Sub(s.StartedAt))
	s.Score = policy.Score(*s)
	return nil
}

func (s *Session) accrueIdle(now time.Time) {
	if s.IdleAccruedAt.IsZero() {
		s.IdleAccruedAt = now
		return
	}
	if d := now.Sub(s.IdleAccruedAt); d > 0 {
		s.Stats.IdleTime += d
		s.IdleAccruedAt = now
	}
}

func (s *Session) closeAway(now time.Time) {
	if !s.HiddenSince.IsZero() {
		s.Stats.AwayTime += nonNegative(now.Sub(s.HiddenSince))
	}
	s.Hidden = false
	s.HiddenSince = time.Time{}
}

func (s *Session) log(kind EventType, at time.Time) {
	s.Events = append(s.Events, Event{Type: kind, At: at})
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
