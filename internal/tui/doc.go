// Package tui provides the live terminal dashboard for heavy's
// orchestrate command.
//
// The dashboard is read-only. It polls an observer.Tracker at the
// configured refresh rate and shows:
//   - The orchestration phase with a spinner
//   - The generated sub-questions
//   - One row per agent with status icon, iteration, tools and elapsed time
//   - Synthesis progress
//   - The most recent timeline events
//
// Pressing 'q' or Ctrl+C cancels the run.
//
// Usage:
//
//	tracker := observer.NewTracker()
//	dash := tui.NewDashboard(tracker, query, 250*time.Millisecond)
//	err := tui.Run(ctx, dash, func(ctx context.Context) error {
//	    res, err = orch.Orchestrate(ctx, query)
//	    return err
//	})
package tui
