package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/heavy/internal/observer"
)

// DefaultRefreshRate is how often the dashboard polls its source.
const DefaultRefreshRate = 250 * time.Millisecond

// Source provides point-in-time views of a run. *observer.Tracker implements it.
type Source interface {
	Snapshot() observer.Snapshot
}

// tickMsg triggers a snapshot refresh.
type tickMsg time.Time

// DoneMsg signals that the run finished.
type DoneMsg struct {
	Err error
}

// Dashboard is the bubbletea model for a running orchestration.
type Dashboard struct {
	source  Source
	query   string
	refresh time.Duration
	now     func() time.Time

	snap     observer.Snapshot
	spinner  spinner.Model
	progress progress.Model

	width    int
	height   int
	done     bool
	err      error
	quitting bool
}

// NewDashboard creates a dashboard polling source every refresh.
func NewDashboard(source Source, query string, refresh time.Duration) *Dashboard {
	if refresh <= 0 {
		refresh = DefaultRefreshRate
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = phaseStyle

	return &Dashboard{
		source:   source,
		query:    query,
		refresh:  refresh,
		now:      time.Now,
		snap:     source.Snapshot(),
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:    100,
	}
}

func (d *Dashboard) tick() tea.Cmd {
	return tea.Tick(d.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.tick())
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			d.quitting = true
			return d, tea.Quit
		}

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		d.progress.Width = min(max(msg.Width-20, 10), 60)

	case tickMsg:
		d.snap = d.source.Snapshot()
		if d.done {
			return d, nil
		}
		return d, d.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case DoneMsg:
		d.done = true
		d.err = msg.Err
		d.snap = d.source.Snapshot()
		return d, tea.Quit
	}

	return d, nil
}

// Quitting reports whether the user asked to leave before the run finished.
func (d *Dashboard) Quitting() bool {
	return d.quitting && !d.done
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	if d.quitting {
		return "Cancelling...\n"
	}

	o := d.snap.Orchestration
	now := d.now()

	var b strings.Builder

	indicator := d.spinner.View()
	switch o.Phase {
	case observer.PhaseCompleted:
		indicator = statusDone.Render(iconDone)
	case observer.PhaseFailed:
		indicator = statusFailed.Render(iconFailed)
	}
	b.WriteString(fmt.Sprintf("%s %s  %s %s\n",
		indicator,
		titleStyle.Render("heavy"),
		phaseStyle.Render(string(o.Phase)),
		labelStyle.Render(formatDuration(now.Sub(o.StartTime)))))
	if o.Detail != "" {
		b.WriteString(labelStyle.Render("  "+truncate(o.Detail, d.width-4)) + "\n")
	}
	b.WriteString(labelStyle.Render("Query: ") + valueStyle.Render(truncate(d.query, d.width-8)) + "\n\n")

	if len(o.SubQuestions) > 0 {
		b.WriteString(sectionStyle.Render("Questions") + "\n")
		for i, q := range o.SubQuestions {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, valueStyle.Render(truncate(q, d.width-6))))
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Agents (%d done, %d failed)", o.Completed, o.Failed)) + "\n")
	b.WriteString(renderAgents(d.snap.Agents, now, d.width) + "\n\n")

	if o.Phase == observer.PhaseSynthesizing || o.SynthesisProgress > 0 {
		b.WriteString(sectionStyle.Render("Synthesis") + "\n")
		b.WriteString("  " + d.progress.ViewAs(o.SynthesisProgress) + "\n\n")
	}

	b.WriteString(sectionStyle.Render("Activity") + "\n")
	b.WriteString(renderTimeline(d.snap.Timeline, d.width) + "\n\n")

	b.WriteString(labelStyle.Render("q: cancel"))
	return b.String()
}
