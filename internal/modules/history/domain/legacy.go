package domain

import (
	"fmt"
	"time"

	"focuspulse/internal/platform/clock"
)

// LegacyKey names the export document, matching the browser storage key it
// was first kept under.
const LegacyKey = "focusPulseData"

// LegacyDocument is the portable export format. Times are epoch
// milliseconds.
type LegacyDocument struct {
	Sessions      []LegacySession `json:"sessions"`
	ActiveSession *LegacySession  `json:"activeSession"`
}

type LegacyStats struct {
	Distractions  int   `json:"distractions"`
	IdleTimeMs    int64 `json:"idleTimeMs"`
	ElapsedTimeMs int64 `json:"elapsedTimeMs"`
	AwayTimeMs    int64 `json:"awayTimeMs,omitempty"`
}

type LegacyEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type LegacySession struct {
	ID                string        `json:"id"`
	TaskName          string        `json:"taskName"`
	PlannedDurationMs int64         `json:"plannedDurationMs"`
	IdleThresholdMs   int64         `json:"idleThresholdMs"`
	StartTime         int64         `json:"startTime"`
	EndTime           int64         `json:"endTime"`
	IsActive          bool          `json:"isActive"`
	Status            string        `json:"status"`
	Stats             LegacyStats   `json:"stats"`
	Events            []LegacyEvent `json:"events"`
	ActualEndTime     int64         `json:"actualEndTime,omitempty"`
	Score             int           `json:"score"`
	Outcome           string        `json:"outcome,omitempty"`
}

func LegacyFromRecord(r Record) LegacySession {
	events := make([]LegacyEvent, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, LegacyEvent{Type: ev.Type, Timestamp: clock.Millis(ev.At)})
	}
	return LegacySession{
		ID:                r.ID,
		TaskName:          r.TaskName,
		PlannedDurationMs: r.PlannedDuration.Milliseconds(),
		IdleThresholdMs:   r.IdleThreshold.Milliseconds(),
		StartTime:         clock.Millis(r.StartedAt),
		EndTime:           clock.Millis(r.EndsAt),
		Status:            r.FinalStatus,
		Stats: LegacyStats{
			Distractions:  r.Distractions,
			IdleTimeMs:    r.IdleTime.Milliseconds(),
			ElapsedTimeMs: r.Elapsed.Milliseconds(),
			AwayTimeMs:    r.AwayTime.Milliseconds(),
		},
		Events:        events,
		ActualEndTime: clock.Millis(r.EndedAt),
		Score:         r.Score,
		Outcome:       r.Outcome,
	}
}

// Record converts an archived legacy session. Files written before outcomes
// were recorded get one inferred from the end time.
func (l LegacySession) Record() (Record, error) {
	if l.IsActive {
		return Record{}, fmt.Errorf("session %s is still active", l.ID)
	}
	if l.ActualEndTime == 0 {
		return Record{}, fmt.Errorf("session %s has no end time", l.ID)
	}
	outcome := l.Outcome
	if outcome == "" {
		outcome = "stopped"
		if l.ActualEndTime >= l.EndTime {
			outcome = "completed"
		}
	}
	status := l.Status
	if status == "" {
		status = "FOCUSED"
	}
	events := make([]Event, 0, len(l.Events))
	for _, ev := range l.Events {
		events = append(events, Event{Type: ev.Type, At: clock.FromMillis(ev.Timestamp)})
	}
	r := Record{
		ID:              l.ID,
		TaskName:        l.TaskName,
		PlannedDuration: time.Duration(l.PlannedDurationMs) * time.Millisecond,
		IdleThreshold:   time.Duration(l.IdleThresholdMs) * time.Millisecond,
		StartedAt:       clock.FromMillis(l.StartTime),
		EndsAt:          clock.FromMillis(l.EndTime),
		EndedAt:         clock.FromMillis(l.ActualEndTime),
		Elapsed:         time.Duration(l.Stats.ElapsedTimeMs) * time.Millisecond,
		IdleTime:        time.Duration(l.Stats.IdleTimeMs) * time.Millisecond,
		AwayTime:        time.Duration(l.Stats.AwayTimeMs) * time.Millisecond,
		Distractions:    l.Stats.Distractions,
		Score:           l.Score,
		Outcome:         outcome,
		FinalStatus:     status,
		Events:          events,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
