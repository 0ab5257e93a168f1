package dto

import "time"

type StartInput struct {
	TaskName             string
	DurationMinutes      int
	IdleThresholdSeconds int
}

// RestoreInput carries an active session imported from an export file.
type RestoreInput struct {
	ID              string
	TaskName        string
	PlannedDuration time.Duration
	IdleThreshold   time.Duration
	StartedAt       time.Time
	Status          string
	Distractions    int
	IdleTime        time.Duration
	Events          []EventOutput
}

type EventOutput struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

type SessionOutput struct {
	ID              string        `json:"id"`
	TaskName        string        `json:"task_name"`
	Active          bool          `json:"active"`
	Status          string        `json:"status"`
	PlannedDuration time.Duration `json:"planned_duration"`
	IdleThreshold   time.Duration `json:"idle_threshold"`
	StartedAt       time.Time     `json:"started_at"`
	EndsAt          time.Time     `json:"ends_at"`
	EndedAt         time.Time     `json:"ended_at,omitempty"`
	Remaining       time.Duration `json:"remaining"`
	Elapsed         time.Duration `json:"elapsed"`
	Distractions    int           `json:"distractions"`
	IdleTime        time.Duration `json:"idle_time"`
	AwayTime        time.Duration `json:"away_time"`
	Hidden          bool          `json:"hidden"`
	Score           int           `json:"score"`
	Outcome         string        `json:"outcome,omitempty"`
	Events          []EventOutput `json:"events"`
	NotePath        string        `json:"note_path,omitempty"`
}

// SummaryOutput is a completed session plus how its score was reached.
type SummaryOutput struct {
	SessionOutput
	BaseScore          float64 `json:"base_score"`
	DistractionPenalty float64 `json:"distraction_penalty"`
	IdlePenalty        float64 `json:"idle_penalty"`
}

type TickOutput struct {
	Session   SessionOutput  `json:"session"`
	Completed bool           `json:"completed"`
	Summary   *SummaryOutput `json:"summary,omitempty"`
}

type RecoverOutput struct {
	Found     bool           `json:"found"`
	Completed bool           `json:"completed"`
	Session   SessionOutput  `json:"session"`
	Summary   *SummaryOutput `json:"summary,omitempty"`
}
