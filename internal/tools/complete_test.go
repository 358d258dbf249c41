package tools

import (
	"context"
	"testing"
	"time"
)

func TestMarkTaskComplete(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	tool := MarkTaskComplete{now: func() time.Time { return fixed }}

	out, err := tool.Execute(context.Background(), map[string]any{
		"summary":       "done",
		"final_message": "bye",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.(map[string]any)
	if got["task_complete"] != true || got["summary"] != "done" || got["final_message"] != "bye" {
		t.Errorf("result = %+v", got)
	}
	if got["timestamp"] != "2024-03-01T11:00:00Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	if tool.Name() != CompletionToolName {
		t.Errorf("Name() = %s", tool.Name())
	}
}
