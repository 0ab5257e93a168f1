package domain_test

import (
	"testing"
	"time"

	"focuspulse/internal/modules/history/domain"
)

func TestDashboardFormatting(t *testing.T) {
	t.Parallel()
	empty := domain.Totals{}
	if got := domain.FormatFocus(empty.Focus); got != "0h 0m" {
		t.Fatalf("empty focus: %q", got)
	}
	if got := empty.AverageLabel(); got != "-" {
		t.Fatalf("empty average: %q", got)
	}
	totals := domain.Totals{Sessions: 2, Focus: 95*time.Minute + 59*time.Second, ScoreSum: 171}
	if got := domain.FormatFocus(totals.Focus); got != "1h 35m" {
		t.Fatalf("focus: %q", got)
	}
	if got := totals.AverageLabel(); got != "86" {
		t.Fatalf("85.5 must round up, got %q", got)
	}
}

func TestLegacySessionConversion(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	legacy := domain.LegacySession{
		ID:                "a",
		TaskName:          "Write",
		PlannedDurationMs: 25 * 60 * 1000,
		IdleThresholdMs:   60 * 1000,
		StartTime:         start.UnixMilli(),
		EndTime:           start.Add(25 * time.Minute).UnixMilli(),
		Status:            "FOCUSED",
		Stats:             domain.LegacyStats{Distractions: 1, IdleTimeMs: 3000, ElapsedTimeMs: 600000},
		Events:            []domain.LegacyEvent{{Type: "DISTRACTION_START", Timestamp: start.Add(time.Minute).UnixMilli()}},
		ActualEndTime:     start.Add(10 * time.Minute).UnixMilli(),
		Score:             35,
	}
	r, err := legacy.Record()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if r.Outcome != "stopped" || r.Duration() != 10*time.Minute || r.IdleTime != 3*time.Second || !r.Events[0].At.Equal(start.Add(time.Minute)) {
		t.Fatalf("unexpected record: %+v", r)
	}
	back := domain.LegacyFromRecord(r)
	if back.ActualEndTime != legacy.ActualEndTime || back.Stats != legacy.Stats || back.Outcome != "stopped" {
		t.Fatalf("unexpected legacy: %+v", back)
	}

	legacy.ActualEndTime = legacy.EndTime
	legacy.Outcome = ""
	if r, _ := legacy.Record(); r.Outcome != "completed" {
		t.Fatalf("expected inferred completed outcome, got %q", r.Outcome)
	}
	legacy.IsActive = true
	if _, err := legacy.Record(); err == nil {
		t.Fatalf("active legacy session must not become a record")
	}
	legacy.IsActive = false
	legacy.Score = 120
	if _, err := legacy.Record(); err == nil {
		t.Fatalf("score above 100 must be rejected")
	}
}
