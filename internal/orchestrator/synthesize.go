package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ShayCichocki/heavy/internal/agent"
)

// FormatOutcomes renders outcomes in index order as the block handed to
// the synthesis prompt. Failed agents keep their error text.
func FormatOutcomes(outcomes []AgentOutcome) string {
	ordered := slices.Clone(outcomes)
	slices.SortStableFunc(ordered, func(a, b AgentOutcome) int { return a.Index - b.Index })

	blocks := make([]string, 0, len(ordered))
	for _, out := range ordered {
		blocks = append(blocks, fmt.Sprintf("=== Agent %d (%s) ===\n%s", out.Index, out.Status, strings.TrimSpace(out.Response)))
	}
	return strings.Join(blocks, "\n\n")
}

// Synthesize merges all outcomes into one answer with a single tool-less
// call. Any gateway failure, or an empty reply, is a synthesis Error.
func (o *Orchestrator) Synthesize(ctx context.Context, outcomes []AgentOutcome) (string, error) {
	o.observer.UpdateSynthesisProgress(0)

	prompt := renderSynthesisPrompt(o.synthesisPrompt, FormatOutcomes(outcomes), len(outcomes))
	o.observer.UpdateSynthesisProgress(0.5)

	answer, err := agent.Complete(ctx, o.gateway, o.model, "", prompt, o.maxTokens)
	if err != nil {
		return "", &Error{Reason: ReasonSynthesisFailed, Err: err}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", &Error{Reason: ReasonSynthesisFailed, Err: errors.New("empty synthesis response")}
	}

	o.observer.UpdateSynthesisProgress(1)
	return answer, nil
}
