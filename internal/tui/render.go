package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/heavy/internal/observer"
)

// Status icons for agent states.
const (
	iconRunning = "[●]"
	iconDone    = "[✓]"
	iconFailed  = "[✗]"
	iconPending = "[○]"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	phaseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	statusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))  // Green
	statusDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))  // Dark green
	statusFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Red
	statusPending = lipgloss.NewStyle().Foreground(lipgloss.Color("244")) // Gray
	logTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("240"))
)

// statusIcon returns the styled icon for an agent status.
func statusIcon(s observer.Status) string {
	switch s {
	case observer.StatusRunning:
		return statusRunning.Render(iconRunning)
	case observer.StatusCompleted:
		return statusDone.Render(iconDone)
	case observer.StatusFailed:
		return statusFailed.Render(iconFailed)
	default:
		return statusPending.Render(iconPending)
	}
}

// renderAgents renders one row per agent.
func renderAgents(agents []observer.AgentMetrics, now time.Time, width int) string {
	if len(agents) == 0 {
		return labelStyle.Render("  No agents yet")
	}

	var b strings.Builder
	for i, a := range agents {
		if i > 0 {
			b.WriteString("\n")
		}
		iter := fmt.Sprintf("%d/%d", a.Iteration, a.MaxIterations)
		line := fmt.Sprintf("  %s %-8s %-6s %7s  tools:%-2d api:%-2d tok:%-6s",
			statusIcon(a.Status), a.ID, iter, formatDuration(a.Elapsed(now)),
			len(a.ToolsUsed), a.APICalls, formatTokensCompact(a.Tokens))
		b.WriteString(valueStyle.Render(line))

		task := a.CurrentTask
		if n := len(a.Errors); n > 0 && a.Status == observer.StatusFailed {
			task = a.Errors[n-1]
		}
		if task != "" {
			b.WriteString("\n      ")
			b.WriteString(labelStyle.Render(truncate(task, width-8)))
		}
	}
	return b.String()
}

// renderTimeline renders the retained timeline events, oldest first.
func renderTimeline(events []observer.Event, width int) string {
	if len(events) == 0 {
		return labelStyle.Render("  No activity yet")
	}

	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		title := e.Title
		if e.Level == observer.LevelError {
			title = statusFailed.Render(title)
		} else {
			title = phaseStyle.Render(title)
		}
		b.WriteString(fmt.Sprintf("  %s %s %s",
			logTimeStyle.Render(e.Time.Format("15:04:05")),
			title,
			valueStyle.Render(truncate(e.Details, width-len(e.Title)-14))))
	}
	return b.String()
}

// formatDuration formats a duration for compact display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatTokensCompact formats tokens in a compact form (e.g., 1.2k, 3.4M).
func formatTokensCompact(tokens int64) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	if tokens < 1000000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(tokens)/1000000)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
