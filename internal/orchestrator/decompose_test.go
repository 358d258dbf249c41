package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ShayCichocki/heavy/internal/llm"
)

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		n       int
		want    []string
		wantErr bool
	}{
		{name: "plain array", reply: `["a?", "b?"]`, n: 2, want: []string{"a?", "b?"}},
		{name: "surrounding prose", reply: "Sure! Here you go:\n[\"a?\", \" b? \"]\nHope it helps.", n: 2, want: []string{"a?", "b?"}},
		{name: "bracket after array", reply: "[\"What is X?\",\"What is Y?\"]\n\nsee [1]", n: 2, want: []string{"What is X?", "What is Y?"}},
		{name: "bracket before array", reply: "Here are [2] questions:\n[\"What is X?\", \"What is Y?\"]", n: 2, want: []string{"What is X?", "What is Y?"}},
		{name: "wrong length", reply: `["a?"]`, n: 2, wantErr: true},
		{name: "not json", reply: "I cannot do that", n: 2, wantErr: true},
		{name: "malformed json", reply: `["a?", "b?"`, n: 2, wantErr: true},
		{name: "object not array", reply: `{"questions": "a"}`, n: 1, wantErr: true},
		{name: "non-string elements", reply: `[1, 2]`, n: 2, wantErr: true},
		{name: "empty element", reply: `["a?", "  "]`, n: 2, wantErr: true},
		{name: "duplicates", reply: `["a?", "a?"]`, n: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuestions(tt.reply, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFallbackQuestions(t *testing.T) {
	got := FallbackQuestions("Go", 6)
	want := []string{
		"Research comprehensive information about: Go",
		"Analyze and provide insights about: Go",
		"Find alternative perspectives on: Go",
		"Verify and cross-check facts about: Go",
		"Explore additional aspects of: Go (perspective 5)",
		"Explore additional aspects of: Go (perspective 6)",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDecomposeAlwaysReturnsN(t *testing.T) {
	replies := map[string]func() (*llm.Completion, error){
		"malformed json": func() (*llm.Completion, error) { return text(`["a", "b"`), nil },
		"wrong length":   func() (*llm.Completion, error) { return text(`["only one"]`), nil },
		"prose":          func() (*llm.Completion, error) { return text("Here are some thoughts."), nil },
		"empty":          func() (*llm.Completion, error) { return text(""), nil },
		"gateway error":  func() (*llm.Completion, error) { return nil, &llm.APIError{StatusCode: 500, Message: "down"} },
	}

	for name, reply := range replies {
		for n := 2; n <= 6; n++ {
			t.Run(fmt.Sprintf("%s/n=%d", name, n), func(t *testing.T) {
				model := newFakeModel()
				model.decompose = reply
				got := newTestOrchestrator(t, model).Decompose(context.Background(), "topic", n)
				if len(got) != n {
					t.Fatalf("expected %d questions, got %d", n, len(got))
				}
				for i, q := range got {
					if strings.TrimSpace(q) == "" {
						t.Errorf("question %d is empty", i)
					}
				}
			})
		}
	}
}

func TestDecomposeUsesModelQuestions(t *testing.T) {
	model := newFakeModel()
	model.decompose = func() (*llm.Completion, error) {
		return text(`["What is X?", "What is Y?", "How do they differ?"]`), nil
	}
	got := newTestOrchestrator(t, model).Decompose(context.Background(), "X vs Y", 3)
	if strings.Join(got, "|") != "What is X?|What is Y?|How do they differ?" {
		t.Errorf("unexpected questions: %v", got)
	}
}

func TestDecomposeUnauthorized(t *testing.T) {
	model := newFakeModel()
	apiErr := &llm.APIError{StatusCode: 401, Message: "bad key"}
	model.decompose = func() (*llm.Completion, error) { return nil, apiErr }
	o := newTestOrchestrator(t, model, WithAgents(2))

	if got := o.Decompose(context.Background(), "topic", 2); len(got) != 2 {
		t.Fatalf("Decompose must still return 2 questions, got %v", got)
	}

	_, err := o.Orchestrate(context.Background(), "topic")
	var orchErr *Error
	if !errors.As(err, &orchErr) || orchErr.Reason != ReasonUnauthorized {
		t.Fatalf("expected unauthorized orchestration error, got %v", err)
	}
	if !errors.Is(err, apiErr) {
		t.Error("expected error to wrap the API error")
	}
}

func TestRenderQuestionPrompt(t *testing.T) {
	got := renderQuestionPrompt(DefaultQuestionPrompt, "about {num_agents}", 3)
	if !strings.Contains(got, "Generate exactly 3 different") {
		t.Error("agent count not substituted")
	}
	if !strings.Contains(got, "Original user query: about {num_agents}") {
		t.Error("user input must be inserted verbatim")
	}
}
