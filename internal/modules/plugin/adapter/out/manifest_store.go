package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"focuspulse/internal/modules/plugin/domain"
	pluginout "focuspulse/internal/modules/plugin/port/out"
)

// FileManifestStore reads the plugin list from a JSON file. Relative binary
// paths resolve against the data dir; environment references are expanded.
type FileManifestStore struct {
	dataDir string
	path    string
}

func NewFileManifestStore(dataDir, manifestPath string) pluginout.ManifestStore {
	if manifestPath == "" {
		manifestPath = filepath.Join(dataDir, "plugins", "plugins.json")
	}
	return &FileManifestStore{dataDir: dataDir, path: manifestPath}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read plugin manifests: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []domain.Manifest{}, nil
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode plugin manifests: %w", err)
	}
	for i := range manifests {
		binary := os.ExpandEnv(manifests[i].Binary)
		if binary != "" && !filepath.IsAbs(binary) {
			binary = filepath.Join(s.dataDir, binary)
		}
		if binary != "" {
			binary = filepath.Clean(binary)
		}
		manifests[i].Binary = binary
	}
	return manifests, nil
}
