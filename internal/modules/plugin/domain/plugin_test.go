package domain_test

import (
	"strings"
	"testing"
	"time"

	"focuspulse/internal/modules/plugin/domain"
)

var validSHA = strings.Repeat("a", 64)

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	base := domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: validSHA, Enabled: true, Capabilities: []domain.Capability{domain.CapabilityNotify}}
	cases := []struct {
		name      string
		mutate    func(*domain.Manifest)
		shouldErr bool
	}{
		{name: "valid", mutate: func(*domain.Manifest) {}},
		{name: "missing name", mutate: func(m *domain.Manifest) { m.Name = "" }, shouldErr: true},
		{name: "missing version", mutate: func(m *domain.Manifest) { m.Version = "" }, shouldErr: true},
		{name: "missing binary", mutate: func(m *domain.Manifest) { m.Binary = "" }, shouldErr: true},
		{name: "uppercase sha", mutate: func(m *domain.Manifest) { m.SHA256 = strings.Repeat("A", 64) }, shouldErr: true},
		{name: "no capabilities", mutate: func(m *domain.Manifest) { m.Capabilities = nil }, shouldErr: true},
		{name: "unknown capability", mutate: func(m *domain.Manifest) { m.Capabilities = []domain.Capability{"analyze"} }, shouldErr: true},
		{name: "duplicate capability", mutate: func(m *domain.Manifest) {
			m.Capabilities = []domain.Capability{domain.CapabilityNotify, domain.CapabilityNotify}
		}, shouldErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := base
			m.Capabilities = append([]domain.Capability(nil), base.Capabilities...)
			tc.mutate(&m)
			err := m.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestDescriptorTimeoutAndRequestValidation(t *testing.T) {
	t.Parallel()
	if got := (domain.CommandDescriptor{ID: "x"}).Timeout(time.Second); got != time.Second {
		t.Fatalf("expected fallback timeout, got %s", got)
	}
	if got := (domain.CommandDescriptor{ID: "x", TimeoutMS: 250}).Timeout(time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected descriptor timeout, got %s", got)
	}
	if err := (domain.CommandDescriptor{ID: "x", TimeoutMS: -1}).Validate(); err == nil {
		t.Fatalf("negative timeout must fail")
	}
	if err := (domain.ExecuteRequest{CommandID: "cmd", Context: domain.ExecuteContext{DataDir: "/tmp", Cwd: "/tmp"}}).Validate(); err != nil {
		t.Fatalf("request validate: %v", err)
	}
	if err := (domain.ExecuteRequest{CommandID: "cmd", Context: domain.ExecuteContext{Cwd: "/tmp"}}).Validate(); err == nil {
		t.Fatalf("missing data dir must fail")
	}
}

func TestNotificationValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.Notification{SessionID: "s", Score: 100}).Validate(); err != nil {
		t.Fatalf("valid notification: %v", err)
	}
	if err := (domain.Notification{Score: 50}).Validate(); err == nil {
		t.Fatalf("missing session id must fail")
	}
	if err := (domain.Notification{SessionID: "s", Score: 101}).Validate(); err == nil {
		t.Fatalf("score above 100 must fail")
	}
}
