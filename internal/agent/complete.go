package agent

import (
	"context"

	"github.com/ShayCichocki/heavy/internal/llm"
)

// Complete makes a single tool-less call and returns the reply text. It is
// used for decomposition and synthesis, which need one answer and no tools.
func Complete(ctx context.Context, gateway llm.Gateway, model, system, user string, maxTokens int) (string, error) {
	var messages []llm.Message
	if system != "" {
		messages = append(messages, llm.SystemMessage(system))
	}
	messages = append(messages, llm.UserMessage(user))

	resp, err := gateway.Complete(ctx, llm.Request{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
