package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"focuspulse/internal/bootstrap"
	sessiondomain "focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
)

func newSessionCmd(dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Session commands"}

	var task string
	var duration, idleThreshold int
	startCmd := &cobra.Command{
		Use:   "start --task <name>",
		Short: "Start a focus session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(task) == "" {
				return fmt.Errorf("--task is required")
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				minutes := duration
				if !cmd.Flags().Changed("duration") {
					minutes = app.Config.Session.DefaultDurationMinutes
				}
				out, err := app.SessionCLI.Start(context.Background(), task, minutes, idleThreshold)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started %q (%s) for %s, ends %s\n",
					out.TaskName, out.ID, sessiondomain.Minutes(out.PlannedDuration), out.EndsAt.Local().Format("15:04:05"))
				return nil
			})
		},
	}
	startCmd.Flags().StringVar(&task, "task", "", "task name")
	startCmd.Flags().IntVar(&duration, "duration", 0, "planned minutes (default from session.default_duration_minutes)")
	startCmd.Flags().IntVar(&idleThreshold, "idle-threshold", 0, "idle threshold in seconds (0 uses the configured default)")
	session.AddCommand(startCmd)

	session.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active session, completing it if its time is up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Status(context.Background())
				if err != nil {
					return err
				}
				if out.Completed && out.Summary != nil {
					printSummary(cmd.OutOrStdout(), *out.Summary)
					return nil
				}
				s := out.Session
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s left  distractions=%d idle=%s\n",
					s.TaskName, s.Status, sessiondomain.Countdown(s.Remaining), s.Distractions, sessiondomain.Clock(s.IdleTime))
				return nil
			})
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "End the active session early",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Stop(context.Background())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), out)
				return nil
			})
		},
	})

	return session
}

func printSummary(w io.Writer, s sessiondto.SummaryOutput) {
	_, _ = fmt.Fprintf(w, "%s %s: score %d\n", s.TaskName, s.Outcome, s.Score)
	_, _ = fmt.Fprintf(w, "  duration=%s distractions=%d idle=%s\n",
		sessiondomain.Minutes(s.Elapsed), s.Distractions, sessiondomain.MinutesSeconds(s.IdleTime))
	if s.NotePath != "" {
		_, _ = fmt.Fprintf(w, "  note=%s\n", s.NotePath)
	}
}
