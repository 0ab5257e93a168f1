package dto

import "time"

type SessionRow struct {
	ID           string        `json:"id"`
	TaskName     string        `json:"task_name"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
	Duration     time.Duration `json:"duration"`
	Distractions int           `json:"distractions"`
	IdleTime     time.Duration `json:"idle_time"`
	AwayTime     time.Duration `json:"away_time"`
	Score        int           `json:"score"`
	Outcome      string        `json:"outcome"`
}

type EventOutput struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

type SessionDetail struct {
	SessionRow
	PlannedDuration time.Duration `json:"planned_duration"`
	IdleThreshold   time.Duration `json:"idle_threshold"`
	EndsAt          time.Time     `json:"ends_at"`
	Events          []EventOutput `json:"events"`
}

type DashboardOutput struct {
	Sessions        int           `json:"sessions"`
	TotalFocus      time.Duration `json:"total_focus"`
	TotalFocusLabel string        `json:"total_focus_label"`
	AverageScore    int           `json:"average_score"`
	AverageLabel    string        `json:"average_label"`
}

type TaskOutput struct {
	TaskName        string        `json:"task_name"`
	Slug            string        `json:"slug"`
	Sessions        int           `json:"sessions"`
	TotalFocus      time.Duration `json:"total_focus"`
	TotalFocusLabel string        `json:"total_focus_label"`
	AverageScore    int           `json:"average_score"`
	LastStartedAt   time.Time     `json:"last_started_at"`
}

type ResetOutput struct {
	DeletedSessions int  `json:"deleted_sessions"`
	ClearedActive   bool `json:"cleared_active"`
}

type ImportOutput struct {
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	ActiveRestored bool     `json:"active_restored"`
	Warnings       []string `json:"warnings,omitempty"`
}
