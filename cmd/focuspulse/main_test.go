package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSessionLifecycleThroughCLI(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--data-dir", dir, "session", "start", "--task", "write report", "--duration", "25")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(out, `started "write report"`) {
		t.Fatalf("start output: %q", out)
	}

	if _, err := run(t, "--data-dir", dir, "session", "start", "--task", "again"); err == nil {
		t.Fatal("second start should fail while a session is active")
	}

	out, err = run(t, "--data-dir", dir, "session", "status")
	if err != nil || !strings.Contains(out, "FOCUSED") {
		t.Fatalf("status: %q %v", out, err)
	}

	out, err = run(t, "--data-dir", dir, "session", "stop")
	if err != nil || !strings.Contains(out, "write report stopped") {
		t.Fatalf("stop: %q %v", out, err)
	}

	out, err = run(t, "--data-dir", dir, "history", "stats")
	if err != nil || !strings.Contains(out, "sessions=1") {
		t.Fatalf("stats: %q %v", out, err)
	}
}

func TestResetRequiresYes(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "--data-dir", dir, "reset"); err == nil {
		t.Fatal("reset without --yes must fail")
	}
	out, err := run(t, "--data-dir", dir, "reset", "--yes")
	if err != nil || !strings.Contains(out, "deleted 0 sessions") {
		t.Fatalf("reset: %q %v", out, err)
	}
}

func TestExportIsLegacyDocument(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "--data-dir", dir, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, out)
	}
	if _, ok := doc["sessions"]; !ok {
		t.Fatalf("missing sessions key: %s", out)
	}
}

func TestValidateJSONInput(t *testing.T) {
	t.Parallel()
	if err := validateJSONInput(""); err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if err := validateJSONInput(`{"a":1}`); err != nil {
		t.Fatalf("valid input: %v", err)
	}
	if err := validateJSONInput(`{`); err == nil {
		t.Fatal("invalid JSON must be rejected")
	}
}
