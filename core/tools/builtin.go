package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	listFilesLimit       = 100
	readFileDefaultLines = 40
	readFileMaxLines     = 200
)

// Builtin returns the stock tool set. File tools are confined to the given
// workspace root; paths that resolve outside it are rejected.
func Builtin(workspaceRoot string) []Tool {
	ws := workspace{root: workspaceRoot}

	return []Tool{
		New("get_time", "Get the current local date and time.",
			func(_ context.Context, _ struct{}) (map[string]any, error) {
				return map[string]any{
					"ok":   true,
					"time": time.Now().Format("2006-01-02 15:04:05 MST"),
				}, nil
			},
			WithSpokenResult(func(payload map[string]any) string {
				now, _ := payload["time"].(string)
				if now == "" {
					return ""
				}
				return "The time is " + now + "."
			}),
		),
		New("list_files", "List files and directories under a relative path in the workspace.", ws.listFiles),
		New("read_file_head", "Read the first lines of a text file in the workspace.", ws.readFileHead),
		New("echo", "Repeat the given text back as a tool result.",
			func(_ context.Context, params echoParams) (map[string]any, error) {
				return map[string]any{"ok": true, "text": params.Text}, nil
			},
		),
	}
}

type echoParams struct {
	Text string `json:"text" jsonschema:"description=Text to repeat back"`
}

type listFilesParams struct {
	Path string `json:"path,omitempty" jsonschema:"description=Relative path inside the workspace; defaults to the workspace root"`
}

type readFileHeadParams struct {
	Path  string `json:"path" jsonschema:"description=Relative path of the file inside the workspace"`
	Lines int    `json:"lines,omitempty" jsonschema:"description=Number of lines to read (1-200); defaults to 40"`
}

type workspace struct {
	root string
}

// resolve maps a user-supplied relative path onto the workspace and rejects
// anything that escapes it.
func (w workspace) resolve(relative string) (string, error) {
	if relative == "" {
		relative = "."
	}
	if filepath.IsAbs(relative) {
		return "", fmt.Errorf("path %q must be relative to the workspace", relative)
	}

	resolved := filepath.Clean(filepath.Join(w.root, relative))
	rel, err := filepath.Rel(w.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", relative)
	}
	return resolved, nil
}

func (w workspace) listFiles(_ context.Context, params listFilesParams) (map[string]any, error) {
	dir, err := w.resolve(params.Path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", params.Path, err)
	}

	truncated := false
	if len(entries) > listFilesLimit {
		entries = entries[:listFilesLimit]
		truncated = true
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	return map[string]any{
		"ok":        true,
		"entries":   names,
		"truncated": truncated,
	}, nil
}

func (w workspace) readFileHead(_ context.Context, params readFileHeadParams) (map[string]any, error) {
	if params.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	path, err := w.resolve(params.Path)
	if err != nil {
		return nil, err
	}

	lines := params.Lines
	if lines <= 0 {
		lines = readFileDefaultLines
	}
	if lines > readFileMaxLines {
		lines = readFileMaxLines
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", params.Path, err)
	}
	defer file.Close()

	var head []string
	scanner := bufio.NewScanner(file)
	for len(head) < lines && scanner.Scan() {
		head = append(head, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", params.Path, err)
	}

	return map[string]any{
		"ok":      true,
		"path":    params.Path,
		"lines":   len(head),
		"content": strings.Join(head, "\n"),
	}, nil
}
