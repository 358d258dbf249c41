package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "heavy",
	Short: "Multi-agent research assistant",
	Long: `heavy answers a question by fanning it out to several tool-using agents,
each researching a different angle, then synthesizing their findings into
one answer.

With no subcommand, behaves like 'heavy orchestrate'.

Configuration is read from ~/.config/heavy/config.yaml, a project .heavy.yaml,
a .env file and HEAVY_* environment variables.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOrchestrate,
}

// Execute runs the root command. An interrupt cancels the running query.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/heavy/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	addOrchestrateFlags(rootCmd)

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(orchestrateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
