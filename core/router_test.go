package orchestration

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relayvoice/relay-core/core/events"
	"github.com/relayvoice/relay-core/core/live"
	"github.com/relayvoice/relay-core/core/tools"
)

func newTestRouter(registry *tools.Registry, dialNarrator func(ctx context.Context) (NarratorSession, error)) (*eventRouter, *eventCollector) {
	collector := newEventCollector()
	if dialNarrator == nil {
		dialNarrator = func(ctx context.Context) (NarratorSession, error) {
			return newCompletingNarrator("narrator", []byte{0}), nil
		}
	}
	handoff := &handoffController{
		dial:     dialNarrator,
		playback: newPlaybackQueue(8),
		emit:     collector.emit,
		baseCtx:  context.Background(),
	}
	router := &eventRouter{
		executor:  &toolExecutor{registry: registry},
		processed: newProcessedCalls(16),
		handoff:   handoff,
		emit:      collector.emit,
	}
	return router, collector
}

func countingTool(counter *atomic.Int32) tools.Tool {
	return tools.New("count", "Counts calls.",
		func(_ context.Context, _ struct{}) (map[string]any, error) {
			counter.Add(1)
			return map[string]any{"ok": true}, nil
		},
	)
}

func TestRouterExecutesToolAndResponds(t *testing.T) {
	var calls atomic.Int32
	router, collector := newTestRouter(tools.NewRegistry(countingTool(&calls)), nil)
	listener := newFakeListenerSession("listener")

	router.Dispatch(context.Background(), listener, &live.ServerEvent{
		ToolCalls: []live.ToolCall{{ID: "call-1", Name: "count"}},
	})

	select {
	case responses := <-listener.responded:
		if len(responses) != 1 {
			t.Fatalf("expected one response, got %d", len(responses))
		}
		if responses[0].ID != "call-1" || responses[0].Response["ok"] != true {
			t.Errorf("unexpected response: %+v", responses[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tool responses")
	}

	if calls.Load() != 1 {
		t.Errorf("expected one execution, got %d", calls.Load())
	}
	awaitKind(t, collector, events.KindToolCallStarted)
	awaitKind(t, collector, events.KindToolCallCompleted)
}

func TestRouterDeduplicatesToolCalls(t *testing.T) {
	var calls atomic.Int32
	router, _ := newTestRouter(tools.NewRegistry(countingTool(&calls)), nil)
	listener := newFakeListenerSession("listener")

	event := &live.ServerEvent{ToolCalls: []live.ToolCall{{ID: "call-1", Name: "count"}}}
	router.Dispatch(context.Background(), listener, event)
	<-listener.responded

	router.Dispatch(context.Background(), listener, event)
	time.Sleep(100 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("expected duplicate call to be skipped, got %d executions", calls.Load())
	}
	if got := len(listener.sentResponses()); got != 1 {
		t.Errorf("expected no response batch for an all-duplicate delivery, got %d", got)
	}
}

func TestRouterNarratesSpokenResult(t *testing.T) {
	registry := tools.NewRegistry(
		tools.New("get_time", "Tells the time.",
			func(_ context.Context, _ struct{}) (map[string]any, error) {
				return map[string]any{"ok": true, "time": "noon"}, nil
			},
			tools.WithSpokenResult(func(payload map[string]any) string {
				return "The time is noon."
			}),
		),
	)
	narrator := newCompletingNarrator("narrator", []byte{7})
	router, collector := newTestRouter(registry, func(ctx context.Context) (NarratorSession, error) {
		return narrator, nil
	})
	listener := newFakeListenerSession("listener")

	router.Dispatch(context.Background(), listener, &live.ServerEvent{
		ToolCalls: []live.ToolCall{{ID: "call-1", Name: "get_time"}},
	})

	responses := <-listener.responded
	if responses[0].Response["do_not_speak_further"] != true {
		t.Errorf("expected narration placeholder response, got %v", responses[0].Response)
	}
	if responses[0].Response["status"] != "handled_by_reader_agent" {
		t.Errorf("expected reader-agent status, got %v", responses[0].Response)
	}

	started := awaitKind(t, collector, events.KindHandoffStarted).(events.HandoffStarted)
	if started.Script != "The time is noon." {
		t.Errorf("unexpected narration script: %q", started.Script)
	}
	awaitKind(t, collector, events.KindHandoffCompleted)

	scripts := narrator.sentScripts()
	if len(scripts) != 1 || scripts[0] != "The time is noon." {
		t.Errorf("expected script to reach the narrator, got %v", scripts)
	}
}

func TestRouterNarratesTurnTextWithoutToolCall(t *testing.T) {
	router, collector := newTestRouter(tools.NewRegistry(), nil)
	listener := newFakeListenerSession("listener")

	ctx := context.Background()
	router.Dispatch(ctx, listener, &live.ServerEvent{OutputTranscript: "Hello "})
	router.Dispatch(ctx, listener, &live.ServerEvent{OutputTranscript: "there."})
	router.Dispatch(ctx, listener, &live.ServerEvent{TurnComplete: true})

	started := awaitKind(t, collector, events.KindHandoffStarted).(events.HandoffStarted)
	if started.Script != "Hello there." {
		t.Errorf("expected accumulated turn text, got %q", started.Script)
	}

	// The next turn starts from a clean slate.
	router.Dispatch(ctx, listener, &live.ServerEvent{TurnComplete: true})
	time.Sleep(50 * time.Millisecond)
	handoffs := 0
	for _, event := range collector.all() {
		if event.Kind() == events.KindHandoffStarted {
			handoffs++
		}
	}
	if handoffs != 1 {
		t.Errorf("expected a single handoff, got %d", handoffs)
	}
}

func TestRouterSkipsFallbackAfterToolCall(t *testing.T) {
	var calls atomic.Int32
	router, collector := newTestRouter(tools.NewRegistry(countingTool(&calls)), nil)
	listener := newFakeListenerSession("listener")

	ctx := context.Background()
	router.Dispatch(ctx, listener, &live.ServerEvent{
		OutputTranscript: "Working on it.",
		ToolCalls:        []live.ToolCall{{ID: "call-1", Name: "count"}},
	})
	<-listener.responded
	router.Dispatch(ctx, listener, &live.ServerEvent{TurnComplete: true})

	time.Sleep(100 * time.Millisecond)
	for _, event := range collector.all() {
		if event.Kind() == events.KindHandoffStarted {
			t.Fatal("expected no narration when the turn called a tool")
		}
	}
}

func TestRouterEmitsTranscripts(t *testing.T) {
	router, collector := newTestRouter(tools.NewRegistry(), nil)
	listener := newFakeListenerSession("listener")

	router.Dispatch(context.Background(), listener, &live.ServerEvent{
		InputTranscript:  "computer what time is it",
		OutputTranscript: "Checking.",
	})

	user := awaitKind(t, collector, events.KindUserTranscript).(events.UserTranscript)
	if user.Text != "computer what time is it" {
		t.Errorf("unexpected user transcript: %q", user.Text)
	}
	agent := awaitKind(t, collector, events.KindAgentTranscript).(events.AgentTranscript)
	if agent.Text != "Checking." {
		t.Errorf("unexpected agent transcript: %q", agent.Text)
	}
}

func TestRouterResetSessionClearsState(t *testing.T) {
	router, collector := newTestRouter(tools.NewRegistry(), nil)
	listener := newFakeListenerSession("listener")

	ctx := context.Background()
	router.Dispatch(ctx, listener, &live.ServerEvent{OutputTranscript: "Stale text."})
	router.ResetSession()
	router.Dispatch(ctx, listener, &live.ServerEvent{TurnComplete: true})

	time.Sleep(50 * time.Millisecond)
	for _, event := range collector.all() {
		if event.Kind() == events.KindHandoffStarted {
			t.Fatal("expected no narration from text accumulated before a reset")
		}
	}
}
