package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/heavy/internal/agent"
	"github.com/ShayCichocki/heavy/internal/llm"
)

// fallbackTemplates seed the deterministic questions used when the model's
// decomposition is unusable.
var fallbackTemplates = []string{
	"Research comprehensive information about: %s",
	"Analyze and provide insights about: %s",
	"Find alternative perspectives on: %s",
	"Verify and cross-check facts about: %s",
}

// FallbackQuestions returns n template questions about input.
func FallbackQuestions(input string, n int) []string {
	questions := make([]string, n)
	for i := range questions {
		if i < len(fallbackTemplates) {
			questions[i] = fmt.Sprintf(fallbackTemplates[i], input)
			continue
		}
		questions[i] = fmt.Sprintf("Explore additional aspects of: %s (perspective %d)", input, i+1)
	}
	return questions
}

// ParseQuestions extracts a JSON array of exactly n distinct, non-empty
// strings from a model reply. Text around the array is ignored, including
// stray brackets: each "[" is tried in turn and the first array that
// decodes and validates wins.
func ParseQuestions(reply string, n int) ([]string, error) {
	var firstErr error
	for offset := 0; ; {
		i := strings.IndexByte(reply[offset:], '[')
		if i == -1 {
			break
		}
		start := offset + i
		offset = start + 1

		var raw []string
		if err := json.NewDecoder(strings.NewReader(reply[start:])).Decode(&raw); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("unmarshal questions: %w", err)
			}
			continue
		}
		questions, err := validateQuestions(raw, n)
		if err == nil {
			return questions, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no JSON array found in response")
	}
	return nil, firstErr
}

func validateQuestions(raw []string, n int) ([]string, error) {
	if len(raw) != n {
		return nil, fmt.Errorf("expected %d questions, got %d", n, len(raw))
	}

	seen := make(map[string]bool, n)
	questions := make([]string, 0, n)
	for i, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			return nil, fmt.Errorf("question %d is empty", i)
		}
		if seen[q] {
			return nil, fmt.Errorf("question %d duplicates an earlier one", i)
		}
		seen[q] = true
		questions = append(questions, q)
	}
	return questions, nil
}

// Decompose splits input into exactly n sub-questions. It never fails:
// any problem with the model call or its reply yields FallbackQuestions.
func (o *Orchestrator) Decompose(ctx context.Context, input string, n int) []string {
	questions, _ := o.decompose(ctx, input, n)
	return questions
}

// decompose always returns n questions. The error is non-nil only for
// failures that should end the run: an unauthorized gateway or a
// cancelled context.
func (o *Orchestrator) decompose(ctx context.Context, input string, n int) ([]string, error) {
	if n < 1 {
		n = 1
	}
	prompt := renderQuestionPrompt(o.questionPrompt, input, n)

	reply, err := agent.Complete(ctx, o.gateway, o.model, "", prompt, o.maxTokens)
	if err != nil {
		fallback := FallbackQuestions(input, n)
		switch {
		case llm.IsUnauthorized(err):
			return fallback, err
		case ctx.Err() != nil:
			return fallback, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("question generation failed, using fallback questions")
		return fallback, nil
	}

	questions, err := ParseQuestions(reply, n)
	if err != nil {
		o.log.Warn().Err(err).Msg("unusable question list, using fallback questions")
		return FallbackQuestions(input, n), nil
	}
	return questions, nil
}
