package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
)

// New builds the root JSON logger. Extra writers (stderr for the daemon)
// receive the same lines as the log file.
func New(name, level string, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		Output:     out,
		JSONFormat: true,
	})
}

// OpenFile opens (appending) the log file at path and returns a logger
// writing to it and to extra. The returned closer releases the file.
func OpenFile(name, level, path string, extra ...io.Writer) (hclog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	writers := append([]io.Writer{f}, extra...)
	return New(name, level, io.MultiWriter(writers...)), f, nil
}

func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
