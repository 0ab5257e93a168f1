package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"focuspulse/internal/bootstrap"
	historydto "focuspulse/internal/modules/history/dto"
	sessiondomain "focuspulse/internal/modules/session/domain"
)

func newHistoryCmd(dataDir *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Archived session queries"}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				rows, err := app.HistoryCLI.List(context.Background(), limit)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tTASK\tSCORE\tDURATION\tDISTRACTIONS\tOUTCOME\tSTARTED")
				for _, r := range rows {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\t%s\n",
						r.ID, r.TaskName, r.Score, sessiondomain.Minutes(r.Duration),
						r.Distractions, r.Outcome, humanize.Time(r.StartedAt))
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (default 50)")
	history.AddCommand(listCmd)

	var showID string
	showCmd := &cobra.Command{
		Use:   "show --id <session-id>",
		Short: "Show one archived session and its events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(showID) == "" {
				return fmt.Errorf("--id is required")
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				d, err := app.HistoryCLI.Show(context.Background(), showID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s  %s  score %d\n", d.TaskName, d.Outcome, d.Score)
				_, _ = fmt.Fprintf(w, "started=%s ended=%s planned=%s\n",
					d.StartedAt.Local().Format("2006-01-02 15:04:05"),
					d.EndedAt.Local().Format("15:04:05"),
					sessiondomain.Minutes(d.PlannedDuration))
				_, _ = fmt.Fprintf(w, "distractions=%d idle=%s away=%s\n",
					d.Distractions, sessiondomain.MinutesSeconds(d.IdleTime), sessiondomain.MinutesSeconds(d.AwayTime))
				for _, ev := range d.Events {
					_, _ = fmt.Fprintf(w, "  %s  %s\n", ev.At.Local().Format("15:04:05"), ev.Type)
				}
				return nil
			})
		},
	}
	showCmd.Flags().StringVar(&showID, "id", "", "session id")
	history.AddCommand(showCmd)

	history.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Totals across all archived sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.HistoryCLI.Stats(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sessions=%d focus=%s avg_score=%s\n",
					out.Sessions, out.TotalFocusLabel, out.AverageLabel)
				return nil
			})
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "tasks",
		Short: "Per-task totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				tasks, err := app.HistoryCLI.Tasks(context.Background())
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), tasks)
			})
		},
	})

	return history
}

func printTasks(w io.Writer, tasks []historydto.TaskOutput) error {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "no sessions")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TASK\tSESSIONS\tFOCUS\tAVG\tLAST")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n",
			t.TaskName, t.Sessions, t.TotalFocusLabel, t.AverageScore, humanize.Time(t.LastStartedAt))
	}
	return tw.Flush()
}
