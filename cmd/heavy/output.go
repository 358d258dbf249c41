package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/ShayCichocki/heavy/internal/llm"
)

const unauthorizedHelp = `The provider rejected the API key. Check that:
  - the key for your provider is set (OPENROUTER_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY)
  - provider.type matches the key you configured
  - the key has not been revoked or run out of credit`

// coded is implemented by every error type that carries a category code.
type coded interface {
	Code() string
}

// printError writes err as "[CODE] message", plus guidance for auth failures.
func printError(w io.Writer, err error) {
	code := "ERROR"
	var c coded
	if errors.As(err, &c) {
		code = c.Code()
	}
	fmt.Fprintf(w, "%s %v\n", color.RedString("[%s]", code), err)
	if llm.IsUnauthorized(err) {
		fmt.Fprintln(w, color.YellowString(unauthorizedHelp))
	}
}

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// formatDuration renders run times the way the summary line shows them.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
