package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pluginout "focuspulse/internal/modules/plugin/adapter/out"
)

const sampleSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func writeManifest(t *testing.T, base, raw string) {
	t.Helper()
	pluginsDir := filepath.Join(base, "plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginsDir, "plugins.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}
}

func TestFileManifestStoreLoadMissingOrEmptyReturnsEmpty(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	store := pluginout.NewFileManifestStore(base, "")
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}

	writeManifest(t, base, "  \n")
	manifests, err = store.Load(context.Background())
	if err != nil {
		t.Fatalf("load blank manifest: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected blank file to mean no plugins, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifest(t, base, `[
  {
    "name": "desktop",
    "version": "1.0.0",
    "binary": "plugins/desktop/desktop-plugin",
    "sha256": "`+sampleSHA+`",
    "enabled": true,
    "capabilities": ["notify"]
  }
]`)
	store := pluginout.NewFileManifestStore(base, "")
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	want := filepath.Join(base, "plugins", "desktop", "desktop-plugin")
	if manifests[0].Binary != want {
		t.Fatalf("expected %s, got %s", want, manifests[0].Binary)
	}
}

func TestFileManifestStoreExpandsEnvAndCustomPath(t *testing.T) {
	base := t.TempDir()
	t.Setenv("FOCUSPULSE_TEST_PLUGIN_DIR", "/opt/focus")
	custom := filepath.Join(base, "custom.json")
	raw := `[{"name":"hook","version":"1","binary":"$FOCUSPULSE_TEST_PLUGIN_DIR/hook","sha256":"` + sampleSHA + `","enabled":false,"capabilities":["command"]}]`
	if err := os.WriteFile(custom, []byte(raw), 0o644); err != nil {
		t.Fatalf("write custom manifest: %v", err)
	}
	manifests, err := pluginout.NewFileManifestStore(base, custom).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 || manifests[0].Binary != "/opt/focus/hook" {
		t.Fatalf("unexpected manifests: %+v", manifests)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifest(t, base, `[
  {
    "name": "desktop",
    "version": "1.0.0",
    "binary": "/tmp/desktop-plugin",
    "sha256": "`+sampleSHA+`",
    "enabled": true,
    "capabilities": ["notify"],
    "unknown_field": true
  }
]`)
	store := pluginout.NewFileManifestStore(base, "")
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
