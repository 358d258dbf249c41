package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/ShayCichocki/heavy/internal/config"
	"github.com/ShayCichocki/heavy/internal/tools"
)

// exitCommands leave the interactive prompt.
var exitCommands = []string{"quit", "exit", "bye"}

// repl reads questions line by line and hands each to handle.
type repl struct {
	app    *app
	in     io.Reader
	out    io.Writer
	title  string
	handle func(ctx context.Context, query string) error
}

func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprintln(r.out, color.New(color.Bold).Sprint(r.title))
	fmt.Fprintln(r.out, "Type 'help' for commands, 'quit' to exit.")
	fmt.Fprintln(r.out)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.out, color.CyanString("User: "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		cmd := strings.ToLower(line)
		switch {
		case line == "":
			continue
		case slices.Contains(exitCommands, cmd):
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case cmd == "help":
			r.help()
		case cmd == "tools":
			cfg, _ := r.app.current()
			printTools(r.out, cfg)
		case cmd == "status":
			r.status()
		default:
			if err := r.handle(ctx, line); err != nil {
				printError(r.out, err)
			}
		}
		fmt.Fprintln(r.out)
	}
}

func (r *repl) help() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  help    show this message")
	fmt.Fprintln(r.out, "  tools   list the tools agents can call")
	fmt.Fprintln(r.out, "  status  show provider, model and token usage")
	fmt.Fprintf(r.out, "  %s  leave\n", strings.Join(exitCommands, ", "))
	fmt.Fprintln(r.out, "Anything else is sent as a question.")
}

func (r *repl) status() {
	cfg, _ := r.app.current()
	in, out := r.app.tokens.Total()
	fmt.Fprintf(r.out, "Provider:  %s\n", cfg.Provider.Type)
	fmt.Fprintf(r.out, "Model:     %s\n", cfg.Provider.Model)
	fmt.Fprintf(r.out, "API key:   %s (%s)\n", maskedKey(cfg), config.GetAPIKeySource(cfg))
	fmt.Fprintf(r.out, "Agents:    %d\n", cfg.Orchestrator.ParallelAgents)
	fmt.Fprintf(r.out, "API calls: %d\n", r.app.tokens.Calls())
	fmt.Fprintf(r.out, "Tokens:    %d in / %d out\n", in, out)
}

// printTools lists the enabled tools with their descriptions.
func printTools(w io.Writer, cfg *config.Config) {
	registry := tools.Defaults(toolOptions(cfg))
	for _, name := range registry.SortedNames() {
		t, _ := registry.Lookup(name)
		fmt.Fprintf(w, "  %s  %s\n", color.GreenString("%-18s", name), t.Description())
	}
}

// maskedKey returns the resolved API key in display form.
func maskedKey(cfg *config.Config) string {
	if cfg.Provider.Type == config.ProviderBedrock {
		return "(aws credentials)"
	}
	key, err := config.GetAPIKey(cfg)
	if err != nil {
		return config.MaskAPIKey("")
	}
	return config.MaskAPIKey(key)
}
