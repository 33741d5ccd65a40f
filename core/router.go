package orchestration

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/relayvoice/relay-core/core/events"
	"github.com/relayvoice/relay-core/core/live"
)

// eventRouter turns raw listening-session messages into tool executions,
// narration handoffs, and emitted events. Dispatch is called from a single
// receive goroutine; tool calls execute on their own goroutines.
type eventRouter struct {
	executor  *toolExecutor
	processed *processedCalls
	handoff   *handoffController
	emit      eventEmitter

	// respondMu serializes tool responses to the session.
	respondMu sync.Mutex

	mu          sync.Mutex
	turnText    strings.Builder
	sawToolCall bool
}

func (r *eventRouter) Dispatch(ctx context.Context, session ListenerSession, event *live.ServerEvent) {
	if event == nil {
		return
	}

	if event.InputTranscript != "" {
		logger.DebugContext(ctx, "Heard user", "transcript", event.InputTranscript)
		r.emit(events.NewUserTranscript(event.InputTranscript))
	}

	if event.OutputTranscript != "" {
		r.emit(events.NewAgentTranscript(event.OutputTranscript))
		r.mu.Lock()
		r.turnText.WriteString(event.OutputTranscript)
		r.mu.Unlock()
	}

	if len(event.ToolCalls) > 0 {
		r.mu.Lock()
		r.sawToolCall = true
		r.mu.Unlock()
		go r.handleToolCalls(ctx, session, event.ToolCalls)
	}

	if event.TurnComplete {
		r.completeTurn(ctx)
	}
}

// completeTurn narrates the accumulated turn text when the session answered
// directly without calling a tool. The listening session's own audio is muted,
// so without this fallback a direct answer would be silent.
func (r *eventRouter) completeTurn(ctx context.Context) {
	r.mu.Lock()
	text := strings.TrimSpace(r.turnText.String())
	sawToolCall := r.sawToolCall
	r.turnText.Reset()
	r.sawToolCall = false
	r.mu.Unlock()

	if sawToolCall || text == "" {
		return
	}

	logger.InfoContext(ctx, "Turn completed without tool call, narrating turn text")
	r.handoff.Start(text)
}

func (r *eventRouter) handleToolCalls(ctx context.Context, session ListenerSession, calls []live.ToolCall) {
	var responses []live.ToolResponse

	for _, call := range calls {
		if !r.processed.Add(call.ID) {
			logger.DebugContext(ctx, "Skipping duplicate tool call", "id", call.ID, "tool", call.Name)
			continue
		}

		r.emit(events.NewToolCallStarted(call.ID, call.Name, encodeJSON(call.Args)))
		result := r.executor.Execute(ctx, call)

		switch {
		case result.OK && result.Script != "":
			r.emit(events.NewToolCallCompleted(call.ID, call.Name, encodeJSON(result.Payload), result.Elapsed))
			r.handoff.Start(result.Script)
			responses = append(responses, live.ToolResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: narratedToolResponse(),
			})
		case result.OK:
			r.emit(events.NewToolCallCompleted(call.ID, call.Name, encodeJSON(result.Payload), result.Elapsed))
			responses = append(responses, live.ToolResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: result.Response(),
			})
		default:
			logger.WarnContext(ctx, "Tool call failed", "tool", call.Name, "error", result.Err)
			r.emit(events.NewToolCallFailed(call.ID, call.Name, result.Err.Error()))
			responses = append(responses, live.ToolResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: result.Response(),
			})
		}
	}

	if len(responses) == 0 {
		return
	}

	r.respondMu.Lock()
	defer r.respondMu.Unlock()
	if err := session.SendToolResponses(responses); err != nil {
		logger.ErrorContext(ctx, "Failed to send tool responses", "error", err)
	}
}

// ResetSession clears per-session routing state; tool call IDs and turn text
// do not carry across a reconnect.
func (r *eventRouter) ResetSession() {
	r.processed.Reset()
	r.mu.Lock()
	r.turnText.Reset()
	r.sawToolCall = false
	r.mu.Unlock()
}

// narratedToolResponse tells the listening session the answer was handed to
// the narrator and it must not speak further.
func narratedToolResponse() map[string]any {
	return map[string]any{
		"ok":                   true,
		"status":               "handled_by_reader_agent",
		"do_not_speak_further": true,
	}
}

func encodeJSON(value map[string]any) string {
	if value == nil {
		return ""
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}
