package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relayvoice/relay-core/core/live"
	"github.com/relayvoice/relay-core/core/tools"
)

type toolExecutor struct {
	registry *tools.Registry
}

// ToolResult is the outcome of one tool execution, already shaped for both
// the wire response and the narration decision.
type ToolResult struct {
	ID   string
	Name string

	OK      bool
	Payload map[string]any
	Err     error

	// Script is the spoken form of a successful result, empty when the result
	// should go back to the listening session instead of being narrated.
	Script string

	Elapsed time.Duration
}

// Response shapes the result for delivery back to the listening session.
func (r ToolResult) Response() map[string]any {
	if r.OK {
		return r.Payload
	}
	message := "tool execution failed"
	if r.Err != nil {
		message = r.Err.Error()
	}
	return map[string]any{"ok": false, "error": message}
}

// Execute runs a single tool call. Failures never propagate as errors; they
// are folded into the result so the session always gets a response.
func (e *toolExecutor) Execute(ctx context.Context, call live.ToolCall) ToolResult {
	started := time.Now()
	result := ToolResult{ID: call.ID, Name: call.Name}

	tool, ok := e.registry.Resolve(call.Name)
	if !ok {
		result.Err = fmt.Errorf("unknown tool %q", call.Name)
		result.Elapsed = time.Since(started)
		return result
	}

	if tool.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tool.Timeout)
		defer cancel()
	}

	payload, err := runTool(ctx, tool, call.Args)
	result.Elapsed = time.Since(started)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("tool %q timed out after %v: %w", call.Name, tool.Timeout, err)
		}
		result.Err = err
		return result
	}

	result.OK = true
	result.Payload = payload
	result.Script = tool.SpokenScript(payload)
	return result
}

// runTool isolates panics in tool handlers.
func runTool(ctx context.Context, tool tools.Tool, args map[string]any) (payload map[string]any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			payload = nil
			err = fmt.Errorf("tool %q panicked: %v", tool.Name, recovered)
		}
	}()
	return tool.Run(ctx, args)
}
