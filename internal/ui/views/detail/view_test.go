package detail_test

import (
	"strings"
	"testing"
	"time"

	historydto "focuspulse/internal/modules/history/dto"
	"focuspulse/internal/ui/views/detail"
)

func TestMarkdownListsStatsAndEventOffsets(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	md := detail.Markdown(historydto.SessionDetail{
		SessionRow: historydto.SessionRow{
			ID: "a", TaskName: "write report", StartedAt: start,
			Duration: 25 * time.Minute, Distractions: 1, IdleTime: 90 * time.Second,
			Score: 87, Outcome: "completed",
		},
		PlannedDuration: 25 * time.Minute,
		Events: []historydto.EventOutput{
			{Type: "DISTRACTION_START", At: start.Add(2*time.Minute + 5*time.Second)},
			{Type: "DISTRACTION_END", At: start.Add(3 * time.Minute)},
		},
	})
	for _, want := range []string{
		"# write report", "| score | 87 |", "| duration | 25m |", "| idle | 1m 30s |",
		"`+2:05` DISTRACTION_START", "`+3:00` DISTRACTION_END",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownWithoutEvents(t *testing.T) {
	t.Parallel()
	md := detail.Markdown(historydto.SessionDetail{SessionRow: historydto.SessionRow{TaskName: "quiet"}})
	if strings.Contains(md, "## Events") {
		t.Fatal("no events section expected")
	}
}
