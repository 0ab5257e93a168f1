package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	historyinadapter "focuspulse/internal/modules/history/adapter/in"
	historyoutadapter "focuspulse/internal/modules/history/adapter/out"
	historyin "focuspulse/internal/modules/history/port/in"
	historyusecase "focuspulse/internal/modules/history/usecase"
	plugininadapter "focuspulse/internal/modules/plugin/adapter/in"
	pluginoutadapter "focuspulse/internal/modules/plugin/adapter/out"
	pluginin "focuspulse/internal/modules/plugin/port/in"
	pluginservice "focuspulse/internal/modules/plugin/service"
	pluginusecase "focuspulse/internal/modules/plugin/usecase"
	sessioninadapter "focuspulse/internal/modules/session/adapter/in"
	sessionoutadapter "focuspulse/internal/modules/session/adapter/out"
	sessiondomain "focuspulse/internal/modules/session/domain"
	sessionin "focuspulse/internal/modules/session/port/in"
	sessionservice "focuspulse/internal/modules/session/service"
	sessionusecase "focuspulse/internal/modules/session/usecase"
	"focuspulse/internal/platform/clock"
	"focuspulse/internal/platform/config"
	"focuspulse/internal/platform/id"
	"focuspulse/internal/platform/logging"
	"focuspulse/internal/platform/sqlitedb"
	uiapp "focuspulse/internal/ui/app"
	dashboardview "focuspulse/internal/ui/views/dashboard"
)

type App struct {
	Config   config.Config
	Logger   hclog.Logger
	DB       *sqlitedb.DB
	Sessions sessionin.Usecase
	History  historyin.Usecase
	Plugins  pluginin.Usecase

	SessionCLI sessioninadapter.CLIHandler
	HistoryCLI historyinadapter.CLIHandler
	PluginCLI  plugininadapter.CLIHandler

	closers []io.Closer
}

type Options struct {
	// LogStderr mirrors the log file to stderr. The TUI owns the terminal,
	// so only the daemon sets it.
	LogStderr bool
}

func New(cfg config.Config, opts Options) (*App, error) {
	var extra []io.Writer
	if opts.LogStderr {
		extra = append(extra, os.Stderr)
	}
	logger, logFile, err := logging.OpenFile("focuspulse", cfg.Log.Level, cfg.LogPath, extra...)
	if err != nil {
		return nil, err
	}

	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	pluginUC := pluginusecase.NewInteractor(pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.DataDir, cfg.PluginManifest),
		pluginoutadapter.NewGRPCHost(logger.Named("plugin")),
	))

	hooks := sessionusecase.Hooks{
		Notifier: sessionoutadapter.NewPluginNotifier(pluginUC, logger.Named("notify")),
	}
	if cfg.Notes.Enabled {
		hooks.Notes = sessionoutadapter.NewMarkdownNoteWriter(cfg.NotesDir, time.Local)
	}

	sessionSvc := sessionservice.NewSessionService(
		clock.SystemClock{},
		id.UUID{},
		sessiondomain.ScoringPolicy{
			DistractionPenalty:   cfg.Scoring.DistractionPenalty,
			IdlePenaltyPerMinute: cfg.Scoring.IdlePenaltyPerMinute,
		},
		sessionservice.Defaults{
			IdleThreshold: time.Duration(cfg.Session.DefaultIdleThresholdSeconds) * time.Second,
		},
	)
	sessionUC := sessionusecase.NewInteractor(
		sessionSvc,
		sessionoutadapter.NewSQLiteActiveSessionStore(db),
		sessionoutadapter.NewSQLiteArchiveStore(db),
		db,
		hooks,
		logger.Named("session"),
	)

	historyUC := historyusecase.NewInteractor(
		historyoutadapter.NewSQLiteStore(db),
		sessionUC,
		logger.Named("history"),
	)

	logger.Debug("app ready", "data_dir", cfg.DataDir, "notes", cfg.Notes.Enabled)

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Sessions:   sessionUC,
		History:    historyUC,
		Plugins:    pluginUC,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		HistoryCLI: historyinadapter.NewCLIHandler(historyUC),
		PluginCLI:  plugininadapter.NewCLIHandler(pluginUC),
		closers:    []io.Closer{db, logFile},
	}, nil
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(
		app.Config.DataDir,
		dashboardview.Defaults{
			DurationMinutes:      app.Config.Session.DefaultDurationMinutes,
			IdleThresholdSeconds: app.Config.Session.DefaultIdleThresholdSeconds,
		},
		app.Sessions,
		app.History,
		app.Plugins,
	)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithMouseAllMotion(),
	)
	_, err := program.Run()
	return err
}
