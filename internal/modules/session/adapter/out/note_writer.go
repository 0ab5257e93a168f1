package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"focuspulse/internal/modules/session/domain"
	sessionout "focuspulse/internal/modules/session/port/out"
	"focuspulse/internal/platform/markdown"
	"focuspulse/internal/platform/slug"
)

const indexName = "index.md"

var indexBlock = markdown.Block{
	Start: "<!-- focuspulse:sessions:start -->",
	End:   "<!-- focuspulse:sessions:end -->",
}

type noteMeta struct {
	SchemaVersion   int    `yaml:"schema_version"`
	ID              string `yaml:"id"`
	Task            string `yaml:"task"`
	Score           int    `yaml:"score"`
	Outcome         string `yaml:"outcome"`
	StartedAt       string `yaml:"started_at"`
	EndedAt         string `yaml:"ended_at"`
	PlannedMinutes  int    `yaml:"planned_minutes"`
	DurationSeconds int    `yaml:"duration_seconds"`
	Distractions    int    `yaml:"distractions"`
	IdleSeconds     int    `yaml:"idle_seconds"`
	AwaySeconds     int    `yaml:"away_seconds"`
}

// MarkdownNoteWriter writes one note per archived session under
// notes/YYYY/MM/DD and keeps a generated list in that day's index.md.
// Paths and times are rendered in loc so a session lands on the user's own
// calendar day.
type MarkdownNoteWriter struct {
	dir string
	loc *time.Location
}

// NewMarkdownNoteWriter files notes by local time. A nil loc means time.Local.
func NewMarkdownNoteWriter(dir string, loc *time.Location) sessionout.NoteWriter {
	if loc == nil {
		loc = time.Local
	}
	return &MarkdownNoteWriter{dir: dir, loc: loc}
}

func (w *MarkdownNoteWriter) WriteNote(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt.In(w.loc)
	dayDir := filepath.Join(w.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return "", fmt.Errorf("create note dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(session.TaskName))
	path := filepath.Join(dayDir, name)

	meta := noteMeta{
		SchemaVersion:   domain.SchemaVersion,
		ID:              session.ID,
		Task:            session.TaskName,
		Score:           session.Score,
		Outcome:         string(session.Outcome),
		StartedAt:       date.Format(time.RFC3339),
		EndedAt:         session.EndedAt.In(w.loc).Format(time.RFC3339),
		PlannedMinutes:  int(session.PlannedDuration / time.Minute),
		DurationSeconds: int(session.Duration() / time.Second),
		Distractions:    session.Stats.Distractions,
		IdleSeconds:     int(session.Stats.IdleTime / time.Second),
		AwaySeconds:     int(session.Stats.AwayTime / time.Second),
	}
	rendered, err := markdown.Render(meta, noteBody(session, w.loc))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	if err := w.refreshIndex(dayDir); err != nil {
		return path, err
	}
	return path, nil
}

func noteBody(s domain.Session, loc *time.Location) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s\n\n", s.TaskName)
	fmt.Fprintf(&b, "- Score: %d\n", s.Score)
	fmt.Fprintf(&b, "- Duration: %s of %s\n", domain.Minutes(s.Duration()), domain.Minutes(s.PlannedDuration))
	fmt.Fprintf(&b, "- Distractions: %d\n", s.Stats.Distractions)
	fmt.Fprintf(&b, "- Idle: %s\n", domain.MinutesSeconds(s.Stats.IdleTime))
	b.WriteString("\n## Events\n\n")
	if len(s.Events) == 0 {
		b.WriteString("No interruptions.\n")
		return b.String()
	}
	for _, ev := range s.Events {
		fmt.Fprintf(&b, "- %s %s\n", ev.At.In(loc).Format("15:04:05"), ev.Type)
	}
	return b.String()
}

type indexEntry struct {
	file string
	meta noteMeta
}

// refreshIndex rebuilds the managed block from the frontmatter of every note
// in dayDir, leaving hand-written text around it untouched.
func (w *MarkdownNoteWriter) refreshIndex(dayDir string) error {
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		return fmt.Errorf("read note dir: %w", err)
	}
	notes := []indexEntry{}
	for _, e := range entries {
		if e.IsDir() || e.Name() == indexName || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dayDir, e.Name()))
		if err != nil {
			return fmt.Errorf("read note %s: %w", e.Name(), err)
		}
		meta := noteMeta{}
		if _, err := markdown.Split(string(raw), &meta); err != nil || meta.ID == "" {
			continue
		}
		notes = append(notes, indexEntry{file: e.Name(), meta: meta})
	}
	sort.Slice(notes, func(a, b int) bool { return notes[a].meta.StartedAt < notes[b].meta.StartedAt })

	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("- [%s](%s) score %d, %s", n.meta.Task, n.file, n.meta.Score, n.meta.Outcome))
	}

	indexPath := filepath.Join(dayDir, indexName)
	existing, err := os.ReadFile(indexPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read index: %w", err)
	}
	doc := string(existing)
	if doc == "" {
		doc = "# Focus sessions\n"
	}
	if err := os.WriteFile(indexPath, []byte(indexBlock.Replace(doc, lines)), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
