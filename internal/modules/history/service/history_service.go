package service

import (
	"time"

	"focuspulse/internal/modules/history/domain"
	"focuspulse/internal/modules/history/dto"
	sessiondto "focuspulse/internal/modules/session/dto"
	"focuspulse/internal/platform/clock"
)

// DefaultListLimit bounds the dashboard list when no limit is given.
const DefaultListLimit = 50

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func ToRow(r domain.Record) dto.SessionRow {
	return dto.SessionRow{
		ID:           r.ID,
		TaskName:     r.TaskName,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		Duration:     r.Duration(),
		Distractions: r.Distractions,
		IdleTime:     r.IdleTime,
		AwayTime:     r.AwayTime,
		Score:        r.Score,
		Outcome:      r.Outcome,
	}
}

func ToDetail(r domain.Record) dto.SessionDetail {
	events := make([]dto.EventOutput, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, dto.EventOutput{Type: ev.Type, At: ev.At})
	}
	return dto.SessionDetail{
		SessionRow:      ToRow(r),
		PlannedDuration: r.PlannedDuration,
		IdleThreshold:   r.IdleThreshold,
		EndsAt:          r.EndsAt,
		Events:          events,
	}
}

func ToDashboard(t domain.Totals) dto.DashboardOutput {
	return dto.DashboardOutput{
		Sessions:        t.Sessions,
		TotalFocus:      t.Focus,
		TotalFocusLabel: domain.FormatFocus(t.Focus),
		AverageScore:    t.AverageScore(),
		AverageLabel:    t.AverageLabel(),
	}
}

func ToTask(t domain.TaskSummary) dto.TaskOutput {
	return dto.TaskOutput{
		TaskName:        t.TaskName,
		Slug:            t.Slug,
		Sessions:        t.Sessions,
		TotalFocus:      t.Focus,
		TotalFocusLabel: domain.FormatFocus(t.Focus),
		AverageScore:    t.AverageScore(),
		LastStartedAt:   t.LastStartedAt,
	}
}

// LegacyFromActive exports the running session. Remaining counters are a
// snapshot; the importing side resumes tracking from its own clock.
func LegacyFromActive(s sessiondto.SessionOutput) domain.LegacySession {
	events := make([]domain.LegacyEvent, 0, len(s.Events))
	for _, ev := range s.Events {
		events = append(events, domain.LegacyEvent{Type: ev.Type, Timestamp: clock.Millis(ev.At)})
	}
	return domain.LegacySession{
		ID:                s.ID,
		TaskName:          s.TaskName,
		PlannedDurationMs: s.PlannedDuration.Milliseconds(),
		IdleThresholdMs:   s.IdleThreshold.Milliseconds(),
		StartTime:         clock.Millis(s.StartedAt),
		EndTime:           clock.Millis(s.EndsAt),
		IsActive:          true,
		Status:            s.Status,
		Stats: domain.LegacyStats{
			Distractions:  s.Distractions,
			IdleTimeMs:    s.IdleTime.Milliseconds(),
			ElapsedTimeMs: s.Elapsed.Milliseconds(),
			AwayTimeMs:    s.AwayTime.Milliseconds(),
		},
		Events: events,
	}
}

func RestoreInput(l domain.LegacySession) sessiondto.RestoreInput {
	events := make([]sessiondto.EventOutput, 0, len(l.Events))
	for _, ev := range l.Events {
		events = append(events, sessiondto.EventOutput{Type: ev.Type, At: clock.FromMillis(ev.Timestamp)})
	}
	return sessiondto.RestoreInput{
		ID:              l.ID,
		TaskName:        l.TaskName,
		PlannedDuration: time.Duration(l.PlannedDurationMs) * time.Millisecond,
		IdleThreshold:   time.Duration(l.IdleThresholdMs) * time.Millisecond,
		StartedAt:       clock.FromMillis(l.StartTime),
		Status:          l.Status,
		Distractions:    l.Stats.Distractions,
		IdleTime:        time.Duration(l.Stats.IdleTimeMs) * time.Millisecond,
		Events:          events,
	}
}
