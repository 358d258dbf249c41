package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/heavy/internal/agent"
	"github.com/ShayCichocki/heavy/internal/history"
	"github.com/ShayCichocki/heavy/internal/observer"
	"github.com/ShayCichocki/heavy/internal/tools"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask a single agent",
	Long: `Runs one tool-using agent on the query and prints its answer.

Without a query, starts an interactive prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if query := strings.TrimSpace(strings.Join(args, " ")); query != "" {
			return a.ask(ctx, out, query)
		}

		a.watchConfig()
		r := &repl{
			app:   a,
			in:    os.Stdin,
			out:   out,
			title: "heavy single agent",
			handle: func(ctx context.Context, q string) error {
				return a.ask(ctx, out, q)
			},
		}
		return r.run(ctx)
	},
}

// ask runs one agent loop on query and prints the answer.
func (a *app) ask(ctx context.Context, w io.Writer, query string) error {
	cfg, gw := a.current()
	start := time.Now()

	obs := observer.NewLogObserver(a.log)
	loop := agent.New(gw, tools.Defaults(toolOptions(cfg)),
		agent.WithModel(cfg.Provider.Model),
		agent.WithSystemPrompt(cfg.Agent.SystemPrompt),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithMaxTokens(cfg.Provider.MaxTokens),
		agent.WithObserver(obs),
		agent.WithLogger(a.log),
	)
	obs.CreateAgent(loop.ID(), loop.MaxIterations())
	answer, err := loop.Run(ctx, query)
	elapsed := time.Since(start)

	a.record(&history.Run{
		ID:        uuid.NewString(),
		Mode:      history.ModeAsk,
		Query:     query,
		Answer:    answer,
		Status:    runStatus(err),
		Error:     errText(err),
		StartedAt: start,
		Duration:  elapsed,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s %s\n\n", color.GreenString("Agent:"), answer)
	fmt.Fprintln(w, color.HiBlackString("Completed in %s", formatDuration(elapsed)))
	return nil
}

func runStatus(err error) history.Status {
	if err != nil {
		return history.StatusFailed
	}
	return history.StatusCompleted
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
