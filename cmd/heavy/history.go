package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/heavy/internal/history"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded runs",
	Long: `Lists recent runs from the history database (history.enabled must be set).
With a run id, shows that run's answer and agent outcomes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled. Enable it with: heavy config history.enabled true")
			return nil
		}

		db, err := history.OpenAndMigrate(cfg.History.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if historyPurge > 0 {
			n, err := db.PurgeOlderThan(ctx, historyPurge)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Purged %d runs older than %s\n", n, historyPurge)
			return nil
		}

		if len(args) == 1 {
			run, err := db.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			printRun(out, run)
			return nil
		}

		runs, err := db.ListRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		printRuns(out, runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list (0 for all)")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "delete runs older than this duration instead of listing")
}

func printRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}
	for _, r := range runs {
		status := color.GreenString("%-9s", r.Status)
		if r.Status == history.StatusFailed {
			status = color.RedString("%-9s", r.Status)
		}
		fmt.Fprintf(w, "%s  %s  %-11s %s %8s  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, status,
			formatDuration(r.Duration), oneLine(r.Query, 60))
	}
}

func printRun(w io.Writer, r *history.Run) {
	fmt.Fprintf(w, "Run:      %s (%s)\n", r.ID, r.Mode)
	fmt.Fprintf(w, "Started:  %s\n", r.StartedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(w, "Duration: %s\n", formatDuration(r.Duration))
	fmt.Fprintf(w, "Status:   %s\n", r.Status)
	fmt.Fprintf(w, "Query:    %s\n", r.Query)
	if r.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", r.Error)
	}
	if len(r.Agents) > 0 {
		fmt.Fprintln(w)
		for _, a := range r.Agents {
			symbol, attr := "✓", color.FgGreen
			if a.Status != "completed" {
				symbol, attr = "✗", color.FgRed
			}
			printStatus(w, symbol, fmt.Sprintf("Agent %d (%s): %s", a.Index+1, formatDuration(a.Execution), a.Question), attr)
		}
	}
	if r.Answer != "" {
		fmt.Fprintf(w, "\n%s\n", r.Answer)
	}
}

// oneLine collapses whitespace and cuts s to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
