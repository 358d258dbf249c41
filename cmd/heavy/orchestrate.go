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
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/heavy/internal/config"
	"github.com/ShayCichocki/heavy/internal/history"
	"github.com/ShayCichocki/heavy/internal/observer"
	"github.com/ShayCichocki/heavy/internal/orchestrator"
	"github.com/ShayCichocki/heavy/internal/tools"
	"github.com/ShayCichocki/heavy/internal/tui"
)

// orchestrateFlags override the orchestrator section of the config.
type orchestrateFlags struct {
	agents  int
	timeout time.Duration
	noTUI   bool
	partial bool
}

var orchFlags orchestrateFlags

var orchestrateCmd = &cobra.Command{
	Use:   "orchestrate [query]",
	Short: "Research a query with parallel agents",
	Long: `Splits the query into one sub-question per agent, runs the agents in
parallel with a shared deadline and synthesizes their answers.

Shows a live dashboard when stdout is a terminal. Without a query, starts an
interactive prompt.`,
	RunE: runOrchestrate,
}

func addOrchestrateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&orchFlags.agents, "agents", 0, "number of parallel agents (overrides orchestrator.parallel_agents)")
	cmd.Flags().DurationVar(&orchFlags.timeout, "timeout", 0, "deadline for all agents (overrides orchestrator.task_timeout)")
	cmd.Flags().BoolVar(&orchFlags.noTUI, "no-tui", false, "print progress logs instead of the dashboard")
	cmd.Flags().BoolVar(&orchFlags.partial, "partial", false, "synthesize finished agents when the deadline passes")
}

func init() {
	addOrchestrateFlags(orchestrateCmd)
}

func runOrchestrate(cmd *cobra.Command, args []string) error {
	useTUI := !orchFlags.noTUI && isatty.IsTerminal(os.Stdout.Fd())

	a, err := newApp(appOptions{quiet: useTUI})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	run := func(ctx context.Context, q string) error {
		return a.orchestrate(ctx, out, q, orchFlags, useTUI)
	}

	if query := strings.TrimSpace(strings.Join(args, " ")); query != "" {
		return run(ctx, query)
	}

	a.watchConfig()
	r := &repl{app: a, in: os.Stdin, out: out, title: "heavy multi-agent orchestration", handle: run}
	return r.run(ctx)
}

// orchestratorOptions maps config and flag overrides onto orchestrator options.
func orchestratorOptions(cfg *config.Config, flags orchestrateFlags, obs observer.Observer, a *app) []orchestrator.Option {
	oc := cfg.Orchestrator
	if flags.agents > 0 {
		oc.ParallelAgents = flags.agents
	}
	if flags.timeout > 0 {
		oc.TaskTimeout = flags.timeout
	}
	if flags.partial {
		oc.SynthesizePartialOnTimeout = true
	}

	toolOpts := toolOptions(cfg)
	return []orchestrator.Option{
		orchestrator.WithAgents(oc.ParallelAgents),
		orchestrator.WithMaxConcurrency(oc.MaxConcurrency),
		orchestrator.WithTaskTimeout(oc.TaskTimeout),
		orchestrator.WithPartialOnTimeout(oc.SynthesizePartialOnTimeout),
		orchestrator.WithQuestionPrompt(oc.QuestionGenerationPrompt),
		orchestrator.WithSynthesisPrompt(oc.SynthesisPrompt),
		orchestrator.WithModel(cfg.Provider.Model),
		orchestrator.WithSystemPrompt(cfg.Agent.SystemPrompt),
		orchestrator.WithMaxIterations(cfg.Agent.MaxIterations),
		orchestrator.WithMaxTokens(cfg.Provider.MaxTokens),
		orchestrator.WithTools(func() *tools.Registry { return tools.Defaults(toolOpts) }),
		orchestrator.WithObserver(obs),
		orchestrator.WithLogger(a.log),
	}
}

// orchestrate runs one multi-agent query and prints the synthesized answer.
func (a *app) orchestrate(ctx context.Context, w io.Writer, query string, flags orchestrateFlags, useTUI bool) error {
	cfg, gw := a.current()
	// Agents abandoned at the task timeout run on until the answer is out.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := observer.NewTracker()
	metrics := observer.NewMetrics()
	obs := observer.Multi(tracker, metrics, observer.NewLogObserver(a.log))
	orch := orchestrator.New(gw, orchestratorOptions(cfg, flags, obs, a)...)

	var res *orchestrator.Result
	work := func(ctx context.Context) error {
		var err error
		res, err = orch.Orchestrate(ctx, query)
		return err
	}

	start := time.Now()
	var err error
	if useTUI {
		err = tui.Run(ctx, tui.NewDashboard(tracker, query, cfg.TUI.RefreshRate), work)
	} else {
		fmt.Fprintf(w, "Orchestrating %d agents...\n", orch.Agents())
		err = work(ctx)
	}
	elapsed := time.Since(start)

	if path := cfg.Metrics.Textfile; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			a.log.Warn().Err(werr).Str("path", path).Msg("writing metrics textfile")
		}
	}
	a.recordOrchestration(query, start, elapsed, res, err)

	if res != nil && len(res.Outcomes) > 0 {
		printOutcomes(w, res.Outcomes)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n%s\n\n", color.GreenString("=== Final answer ==="), res.Answer)
	fmt.Fprintln(w, color.HiBlackString("%d/%d agents succeeded · completed in %s",
		res.Completed(), len(res.Outcomes), formatDuration(elapsed)))
	return nil
}

// printOutcomes lists each agent's sub-question with its result.
func printOutcomes(w io.Writer, outcomes []orchestrator.AgentOutcome) {
	fmt.Fprintln(w)
	for _, o := range outcomes {
		symbol, attr := "✓", color.FgGreen
		if !o.Succeeded() {
			symbol, attr = "✗", color.FgRed
		}
		printStatus(w, symbol, fmt.Sprintf("Agent %d (%s): %s", o.Index+1, formatDuration(o.Duration), o.Question), attr)
	}
}

func (a *app) recordOrchestration(query string, start time.Time, elapsed time.Duration, res *orchestrator.Result, err error) {
	run := &history.Run{
		ID:        uuid.NewString(),
		Mode:      history.ModeOrchestrate,
		Query:     query,
		Status:    runStatus(err),
		Error:     errText(err),
		StartedAt: start,
		Duration:  elapsed,
	}
	if res != nil {
		if res.RunID != "" {
			run.ID = res.RunID
		}
		run.Answer = res.Answer
		for _, o := range res.Outcomes {
			run.Agents = append(run.Agents, history.AgentRecord{
				Index:     o.Index,
				Question:  o.Question,
				Status:    string(o.Status),
				Response:  o.Response,
				Execution: o.Duration,
			})
		}
	}
	a.record(run)
}
