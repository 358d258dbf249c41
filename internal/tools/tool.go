// Package tools provides the tool registry agents call into and the
// built-in tools: calculate, read_file, write_file, search_web and
// mark_task_complete.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ShayCichocki/heavy/internal/llm"
)

// CompletionToolName is the reserved tool whose invocation ends an agent loop.
const CompletionToolName = "mark_task_complete"

// ErrorCode is the taxonomy code reported for tool failures.
const ErrorCode = "TOOL_ERROR"

// Tool is a named capability the model may ask to run.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema for the tool's arguments.
	Parameters() map[string]any
	// Execute runs the tool. The returned value must be JSON-serializable.
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// ExecutionError describes one failed tool call.
type ExecutionError struct {
	Tool    string
	Message string
	// NotFound is set when no tool with that name is registered.
	NotFound bool
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Code returns the taxonomy code.
func (e *ExecutionError) Code() string { return ErrorCode }

// Result is the outcome of one tool call: either Value or Err is set.
type Result struct {
	Tool  string
	Value any
	Err   *ExecutionError
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Content renders the result as the JSON payload sent back to the model.
// Failures render as {"error": message}.
func (r Result) Content() string {
	var payload any = r.Value
	if r.Err != nil {
		payload = map[string]string{"error": r.Err.Message}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(map[string]string{"error": fmt.Sprintf("Result not serializable: %v", err)})
	}
	return string(data)
}

// Registry maps tool names to tools. A registry belongs to one agent; it is
// not safe to register tools while Execute runs concurrently.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry holding tools in the given order.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// SortedNames returns registered tool names alphabetically.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}

// Schemas describes every registered tool for the model.
func (r *Registry) Schemas() []llm.ToolSchema {
	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		schemas = append(schemas, llm.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return schemas
}

// Execute parses rawArguments and runs the named tool. It never panics
// and never returns a Go error: every failure is carried in Result.Err.
func (r *Registry) Execute(ctx context.Context, name, rawArguments string) (res Result) {
	res.Tool = name

	args := map[string]any{}
	if rawArguments != "" {
		if err := json.Unmarshal([]byte(rawArguments), &args); err != nil {
			res.Err = &ExecutionError{Tool: name, Message: fmt.Sprintf("Invalid arguments: %v", err), Err: err}
			return res
		}
		if args == nil {
			args = map[string]any{}
		}
	}

	t, ok := r.tools[name]
	if !ok {
		res.Err = &ExecutionError{Tool: name, Message: fmt.Sprintf("Unknown tool: %s", name), NotFound: true}
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res.Value = nil
			res.Err = &ExecutionError{Tool: name, Message: fmt.Sprintf("Tool execution failed: %v", p)}
		}
	}()

	value, err := t.Execute(ctx, args)
	if err != nil {
		res.Err = &ExecutionError{Tool: name, Message: err.Error(), Err: err}
		return res
	}
	res.Value = value
	return res
}
