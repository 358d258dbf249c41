package tools

import (
	"context"
	"time"
)

// MarkTaskComplete is the completion signal. Executing it only echoes its
// arguments; the agent loop stops when it sees the call.
type MarkTaskComplete struct {
	now func() time.Time
}

func (MarkTaskComplete) Name() string { return CompletionToolName }

func (MarkTaskComplete) Description() string {
	return "REQUIRED: Call this tool when the task is complete. Provide a short summary of what was accomplished " +
		"and the final message for the user."
}

func (MarkTaskComplete) Parameters() map[string]any {
	return schema(map[string]any{
		"summary":       prop("string", "Brief summary of what was accomplished"),
		"final_message": prop("string", "Final message to the user"),
	}, "summary")
}

func (t MarkTaskComplete) Execute(_ context.Context, args map[string]any) (any, error) {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return map[string]any{
		"task_complete": true,
		"summary":       optionalString(args, "summary", ""),
		"final_message": optionalString(args, "final_message", ""),
		"timestamp":     now().UTC().Format(time.RFC3339),
	}, nil
}
