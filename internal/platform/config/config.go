package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	stateDirName   = ".focuspulse"
	configFileName = "focuspulse.yaml"
	envPrefix      = "FOCUSPULSE"
)

type SessionSettings struct {
	DefaultDurationMinutes      int `mapstructure:"default_duration_minutes"`
	DefaultIdleThresholdSeconds int `mapstructure:"default_idle_threshold_seconds"`
}

type ScoringSettings struct {
	DistractionPenalty   float64 `mapstructure:"distraction_penalty"`
	IdlePenaltyPerMinute float64 `mapstructure:"idle_penalty_per_minute"`
}

type NotesSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type Settings struct {
	Session SessionSettings `mapstructure:"session"`
	Scoring ScoringSettings `mapstructure:"scoring"`
	Notes   NotesSettings   `mapstructure:"notes"`
	Server  ServerSettings  `mapstructure:"server"`
	Log     LogSettings     `mapstructure:"log"`
}

type Config struct {
	DataDir        string
	DBPath         string
	LogPath        string
	NotesDir       string
	PluginManifest string
	ConfigFile     string
	Settings
}

func DefaultSettings() Settings {
	return Settings{
		Session: SessionSettings{DefaultDurationMinutes: 25, DefaultIdleThresholdSeconds: 60},
		Scoring: ScoringSettings{DistractionPenalty: 5, IdlePenaltyPerMinute: 2},
		Server:  ServerSettings{Addr: "127.0.0.1:8742"},
		Log:     LogSettings{Level: "info"},
	}
}

// New derives every path from dataDir and applies default settings.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, stateDirName, "focuspulse.db"),
		LogPath:        filepath.Join(dataDir, stateDirName, "focuspulse.log"),
		NotesDir:       filepath.Join(dataDir, "notes"),
		PluginManifest: filepath.Join(dataDir, "plugins", "plugins.json"),
		ConfigFile:     filepath.Join(dataDir, configFileName),
		Settings:       DefaultSettings(),
	}, nil
}

// Load layers focuspulse.yaml (when present) and FOCUSPULSE_* environment
// variables over the defaults.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, cfg.Settings)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(cfg.ConfigFile); err == nil {
		v.SetConfigFile(cfg.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfg.ConfigFile, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	settings := Settings{}
	if err := v.Unmarshal(&settings); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Settings = settings
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, s Settings) {
	v.SetDefault("session.default_duration_minutes", s.Session.DefaultDurationMinutes)
	v.SetDefault("session.default_idle_threshold_seconds", s.Session.DefaultIdleThresholdSeconds)
	v.SetDefault("scoring.distraction_penalty", s.Scoring.DistractionPenalty)
	v.SetDefault("scoring.idle_penalty_per_minute", s.Scoring.IdlePenaltyPerMinute)
	v.SetDefault("notes.enabled", s.Notes.Enabled)
	v.SetDefault("server.addr", s.Server.Addr)
	v.SetDefault("log.level", s.Log.Level)
}

func (c Config) Validate() error {
	if c.Session.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("session.default_duration_minutes must be positive")
	}
	if c.Session.DefaultIdleThresholdSeconds <= 0 {
		return fmt.Errorf("session.default_idle_threshold_seconds must be positive")
	}
	if c.Scoring.DistractionPenalty < 0 || c.Scoring.IdlePenaltyPerMinute < 0 {
		return fmt.Errorf("scoring penalties must be non-negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
