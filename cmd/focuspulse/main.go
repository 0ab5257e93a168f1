package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"focuspulse/internal/bootstrap"
	"focuspulse/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "focuspulse",
		Short:         "Focus session timer with distraction and idle tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding the database, notes and plugins")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newServeCmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	root.AddCommand(newResetCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newImportCmd(&dataDir))
	root.AddCommand(newPluginCmd(&dataDir))
	return root
}

// defaultDataDir prefers $FOCUSPULSE_DATA_DIR, then ~/focuspulse.
func defaultDataDir() string {
	if dir := os.Getenv("FOCUSPULSE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "focuspulse")
}

func loadApp(dataDir string, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, opts)
}

// withApp opens the application for one command and closes it afterwards.
func withApp(dataDir string, fn func(app *bootstrap.App) error) (err error) {
	app, err := loadApp(dataDir, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(app)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the focus timer terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*dataDir, bootstrap.RunTUI)
		},
	}
}

func newServeCmd(dataDir *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the localhost JSON API and keep the session clock running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{LogStderr: true})
			if err != nil {
				return err
			}
			defer app.Close()
			if addr == "" {
				addr = app.Config.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGHUP)
			defer stop()
			return bootstrap.Serve(ctx, app, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}

func newResetCmd(dataDir *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all history and the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every session; pass --yes to confirm")
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.HistoryCLI.Reset(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d sessions active_cleared=%t\n", out.DeletedSessions, out.ClearedActive)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newExportCmd(dataDir *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all sessions as a focusPulseData JSON document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				raw, err := app.HistoryCLI.Export(context.Background())
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
					return err
				}
				if err := os.WriteFile(out, raw, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(dataDir *string) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import --in <file>",
		Short: "Import sessions from a focusPulseData JSON document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				return fmt.Errorf("--in is required (use - for stdin)")
			}
			var raw []byte
			var err error
			if in == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(in)
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.HistoryCLI.Import(context.Background(), raw)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "imported=%d skipped=%d active_restored=%t\n", out.Imported, out.Skipped, out.ActiveRestored)
				for _, warning := range out.Warnings {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+warning)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input file, or - for stdin")
	return cmd
}
