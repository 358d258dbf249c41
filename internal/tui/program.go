package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows d while work runs and returns work's error. Quitting the
// dashboard cancels the context given to work.
func Run(ctx context.Context, d *Dashboard, work func(context.Context) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(d, opts...)

	errc := make(chan error, 1)
	go func() {
		err := work(ctx)
		errc <- err
		p.Send(DoneMsg{Err: err})
	}()

	_, runErr := p.Run()
	if d.Quitting() || runErr != nil {
		cancel()
	}
	workErr := <-errc
	if runErr != nil && workErr == nil && !d.done {
		return fmt.Errorf("dashboard: %w", runErr)
	}
	return workErr
}
