package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// resolvePath joins relative paths onto workDir. With a workDir set, the
// result must stay inside it.
func resolvePath(workDir, path string) (string, error) {
	if workDir == "" {
		return path, nil
	}
	root, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("Invalid working directory: %w", err)
	}
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root, resolved)
	}
	resolved = filepath.Clean(resolved)
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("Access denied: %s is outside the working directory", path)
	}
	return resolved, nil
}

// ReadFile returns file contents, optionally limited to the first or last
// N lines.
type ReadFile struct {
	WorkDir string
}

func (ReadFile) Name() string { return "read_file" }

func (ReadFile) Description() string {
	return "Read the contents of a file. Supports reading the whole file, or only the first (head) or last (tail) N lines."
}

func (ReadFile) Parameters() map[string]any {
	return schema(map[string]any{
		"file_path": prop("string", "Path to the file to read"),
		"mode": map[string]any{
			"type":        "string",
			"enum":        []string{"full", "head", "tail"},
			"description": "Which part of the file to return (default: full)",
		},
		"lines": prop("integer", "Number of lines to return for head/tail, or a cap for full"),
	}, "file_path")
}

func (t ReadFile) Execute(_ context.Context, args map[string]any) (any, error) {
	path, err := stringArg(args, "file_path")
	if err != nil {
		return nil, err
	}
	mode := optionalString(args, "mode", "full")
	limit, err := optionalInt(args, "lines", 0)
	if err != nil {
		return nil, err
	}

	resolved, err := resolvePath(t.WorkDir, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("File not found: %s", path)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("Permission denied: %s", path)
		}
		return nil, fmt.Errorf("Failed to read file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	total := len(lines)
	switch mode {
	case "head":
		if limit <= 0 {
			limit = 10
		}
		lines = lines[:min(limit, len(lines))]
	case "tail":
		if limit <= 0 {
			limit = 10
		}
		lines = lines[max(0, len(lines)-limit):]
	case "full":
		if limit > 0 {
			lines = lines[:min(limit, len(lines))]
		}
	default:
		return nil, fmt.Errorf("Invalid mode %q: expected full, head or tail", mode)
	}

	return map[string]any{
		"file_path":   path,
		"content":     strings.Join(lines, "\n"),
		"lines":       len(lines),
		"total_lines": total,
	}, nil
}

// WriteFile writes or appends content to a file, creating parent directories.
type WriteFile struct {
	WorkDir string
}

func (WriteFile) Name() string { return "write_file" }

func (WriteFile) Description() string {
	return "Write content to a file. Creates parent directories if needed and overwrites existing files unless append is true."
}

func (WriteFile) Parameters() map[string]any {
	return schema(map[string]any{
		"file_path": prop("string", "Path to the file to write"),
		"content":   prop("string", "Content to write"),
		"append":    prop("boolean", "Append instead of overwriting (default: false)"),
	}, "file_path", "content")
}

func (t WriteFile) Execute(_ context.Context, args map[string]any) (any, error) {
	path, err := stringArg(args, "file_path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}
	resolved, err := resolvePath(t.WorkDir, path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return nil, writeError(path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if optionalBool(args, "append", false) {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(resolved, flags, 0644)
	if err != nil {
		return nil, writeError(path, err)
	}
	n, err := f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, writeError(path, err)
	}

	return map[string]any{
		"success":       true,
		"file_path":     path,
		"bytes_written": n,
	}, nil
}

func writeError(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("Permission denied: cannot write %s", path)
	}
	return fmt.Errorf("Failed to write file: %w", err)
}
