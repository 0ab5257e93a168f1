package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type Event struct {
	Type string
	At   time.Time
}

// Record is an archived focus session.
type Record struct {
	ID              string
	TaskName        string
	TaskSlug        string
	PlannedDuration time.Duration
	IdleThreshold   time.Duration
	StartedAt       time.Time
	EndsAt          time.Time
	EndedAt         time.Time
	Elapsed         time.Duration
	IdleTime        time.Duration
	AwayTime        time.Duration
	Distractions    int
	Score           int
	Outcome         string
	FinalStatus     string
	Events          []Event
}

// Duration is the focus time the record contributes to totals.
func (r Record) Duration() time.Duration {
	if d := r.EndedAt.Sub(r.StartedAt); d > 0 {
		return d
	}
	return 0
}

func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("session id is required")
	case r.TaskName == "":
		return fmt.Errorf("session %s: task name is required", r.ID)
	case r.PlannedDuration <= 0:
		return fmt.Errorf("session %s: planned duration must be positive", r.ID)
	case r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt):
		return fmt.Errorf("session %s: end must not precede start", r.ID)
	case r.Score < 0 || r.Score > 100:
		return fmt.Errorf("session %s: score out of range: %d", r.ID, r.Score)
	}
	return nil
}

// Totals aggregates a set of records for the dashboard.
type Totals struct {
	Sessions int
	Focus    time.Duration
	ScoreSum int
}

// AverageScore rounds half up, like the dashboard always has.
func (t Totals) AverageScore() int {
	return roundAverage(t.ScoreSum, t.Sessions)
}

func (t Totals) AverageLabel() string {
	if t.Sessions == 0 {
		return "-"
	}
	return strconv.Itoa(t.AverageScore())
}

type TaskSummary struct {
	Slug          string
	TaskName      string
	Sessions      int
	Focus         time.Duration
	ScoreSum      int
	LastStartedAt time.Time
}

func (t TaskSummary) AverageScore() int {
	return roundAverage(t.ScoreSum, t.Sessions)
}

// FormatFocus renders whole minutes as "Xh Ym".
func FormatFocus(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func roundAverage(sum, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(float64(sum)/float64(n) + 0.5))
}
