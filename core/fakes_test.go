package orchestration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/relayvoice/relay-core/core/events"
	"github.com/relayvoice/relay-core/core/live"
	"github.com/relayvoice/relay-core/core/tools"
)

type fakeListenerSession struct {
	id     string
	events chan *live.ServerEvent

	closeOnce sync.Once
	closed    chan struct{}

	mu        sync.Mutex
	audio     [][]byte
	responses [][]live.ToolResponse

	responded chan []live.ToolResponse
}

func newFakeListenerSession(id string) *fakeListenerSession {
	return &fakeListenerSession{
		id:        id,
		events:    make(chan *live.ServerEvent, 16),
		closed:    make(chan struct{}),
		responded: make(chan []live.ToolResponse, 16),
	}
}

func (s *fakeListenerSession) ID() string { return s.id }

func (s *fakeListenerSession) SendAudio(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = append(s.audio, frame)
	return nil
}

func (s *fakeListenerSession) SendToolResponses(responses []live.ToolResponse) error {
	s.mu.Lock()
	s.responses = append(s.responses, responses)
	s.mu.Unlock()
	s.responded <- responses
	return nil
}

func (s *fakeListenerSession) Receive() (*live.ServerEvent, error) {
	select {
	case event := <-s.events:
		return event, nil
	case <-s.closed:
		return nil, live.ErrSessionClosed
	}
}

func (s *fakeListenerSession) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeListenerSession) sentAudio() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.audio...)
}

func (s *fakeListenerSession) sentResponses() [][]live.ToolResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]live.ToolResponse(nil), s.responses...)
}

type fakeNarratorSession struct {
	id     string
	events chan *live.ServerEvent

	closeOnce sync.Once
	closed    chan struct{}

	mu      sync.Mutex
	scripts []string

	// onScript, when set, runs on SendScript and typically queues events.
	onScript func(script string)
}

func newFakeNarratorSession(id string) *fakeNarratorSession {
	return &fakeNarratorSession{
		id:     id,
		events: make(chan *live.ServerEvent, 16),
		closed: make(chan struct{}),
	}
}

// newCompletingNarrator speaks one audio frame per script and completes the
// turn immediately.
func newCompletingNarrator(id string, frame []byte) *fakeNarratorSession {
	narrator := newFakeNarratorSession(id)
	narrator.onScript = func(string) {
		narrator.events <- &live.ServerEvent{
			Audio:            [][]byte{frame},
			OutputTranscript: "spoken",
			TurnComplete:     true,
		}
	}
	return narrator
}

func (s *fakeNarratorSession) ID() string { return s.id }

func (s *fakeNarratorSession) SendScript(script string) error {
	s.mu.Lock()
	s.scripts = append(s.scripts, script)
	s.mu.Unlock()
	if s.onScript != nil {
		s.onScript(script)
	}
	return nil
}

func (s *fakeNarratorSession) Receive() (*live.ServerEvent, error) {
	select {
	case event := <-s.events:
		return event, nil
	case <-s.closed:
		return nil, live.ErrSessionClosed
	}
}

func (s *fakeNarratorSession) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeNarratorSession) sentScripts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.scripts...)
}

type fakeDialer struct {
	dialListener func(ctx context.Context, declarations []tools.Declaration) (ListenerSession, error)
	dialNarrator func(ctx context.Context) (NarratorSession, error)
}

func (d *fakeDialer) DialListener(ctx context.Context, declarations []tools.Declaration) (ListenerSession, error) {
	return d.dialListener(ctx, declarations)
}

func (d *fakeDialer) DialNarrator(ctx context.Context) (NarratorSession, error) {
	return d.dialNarrator(ctx)
}

type eventCollector struct {
	mu     sync.Mutex
	events []events.Event
	ch     chan events.Event
}

func newEventCollector() *eventCollector {
	return &eventCollector{ch: make(chan events.Event, 128)}
}

func (c *eventCollector) emit(event events.Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	select {
	case c.ch <- event:
	default:
	}
}

func (c *eventCollector) all() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

// await blocks until an event matching the predicate arrives or the test
// times out.
func (c *eventCollector) await(t *testing.T, match func(events.Event) bool) events.Event {
	t.Helper()

	for _, event := range c.all() {
		if match(event) {
			return event
		}
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-c.ch:
			if match(event) {
				return event
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
			return nil
		}
	}
}

func awaitKind(t *testing.T, c *eventCollector, kind events.Kind) events.Event {
	t.Helper()
	return c.await(t, func(event events.Event) bool { return event.Kind() == kind })
}
