package live

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/relayvoice/relay-core/core/audio"
	"github.com/relayvoice/relay-core/internal/utils"
)

type SessionKind string

const (
	SessionKindListener SessionKind = "listener"
	SessionKindNarrator SessionKind = "narrator"
)

// Session is a single live connection. It is safe for one goroutine to call
// Receive while others send.
type Session struct {
	raw  *genai.Session
	kind SessionKind
	id   string

	mu     sync.Mutex
	closed bool
}

func newSession(raw *genai.Session, kind SessionKind) *Session {
	return &Session{raw: raw, kind: kind, id: uuid.NewString()}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Kind() SessionKind {
	return s.kind
}

// ServerEvent is one received live message flattened into the fields the
// orchestration layer cares about.
type ServerEvent struct {
	// Audio holds raw PCM frames at the playback rate.
	Audio [][]byte

	InputTranscript  string
	OutputTranscript string

	ToolCalls []ToolCall

	TurnComplete bool
}

type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

type ToolResponse struct {
	ID       string
	Name     string
	Response map[string]any
}

// Receive blocks until the next server message. A locally closed session
// yields ErrSessionClosed so callers can tell a deliberate teardown from a
// dropped connection.
func (s *Session) Receive() (*ServerEvent, error) {
	message, err := s.raw.Receive()
	if err != nil {
		if s.isClosed() {
			return nil, ErrSessionClosed
		}
		return nil, fmt.Errorf("failed to receive from %s session: %w", s.kind, err)
	}

	event := &ServerEvent{}

	if message.ToolCall != nil {
		for _, call := range message.ToolCall.FunctionCalls {
			if call == nil {
				continue
			}
			event.ToolCalls = append(event.ToolCalls, ToolCall{
				ID:   call.ID,
				Name: call.Name,
				Args: call.Args,
			})
		}
	}

	if content := message.ServerContent; content != nil {
		if content.ModelTurn != nil {
			for _, part := range content.ModelTurn.Parts {
				if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
					event.Audio = append(event.Audio, part.InlineData.Data)
				}
			}
		}
		if content.InputTranscription != nil {
			event.InputTranscript = content.InputTranscription.Text
		}
		if content.OutputTranscription != nil {
			event.OutputTranscript = content.OutputTranscription.Text
		}
		event.TurnComplete = content.TurnComplete
	}

	return event, nil
}

// SendAudio streams one captured PCM frame to the session.
func (s *Session) SendAudio(frame []byte) error {
	if err := s.raw.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			MIMEType: audio.CaptureEncodingInfo().MIMEType(),
			Data:     frame,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio to %s session: %w", s.kind, err)
	}
	return nil
}

// SendScript hands the narration script to the session as a single completed
// user turn.
func (s *Session) SendScript(script string) error {
	if err := s.raw.SendClientContent(genai.LiveSendClientContentParameters{
		Turns: []*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: "Read this script verbatim: " + script}},
		}},
		TurnComplete: utils.Ptr(true),
	}); err != nil {
		return fmt.Errorf("failed to send script to %s session: %w", s.kind, err)
	}
	return nil
}

// SendToolResponses returns tool results to the session.
func (s *Session) SendToolResponses(responses []ToolResponse) error {
	if len(responses) == 0 {
		return nil
	}

	functionResponses := make([]*genai.FunctionResponse, 0, len(responses))
	for _, response := range responses {
		functionResponses = append(functionResponses, &genai.FunctionResponse{
			ID:       response.ID,
			Name:     response.Name,
			Response: response.Response,
		})
	}

	if err := s.raw.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: functionResponses,
	}); err != nil {
		return fmt.Errorf("failed to send tool responses to %s session: %w", s.kind, err)
	}
	return nil
}

// Close tears the session down. It is idempotent and marks the session so a
// concurrent Receive reports ErrSessionClosed instead of a transport error.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.raw.Close(); err != nil {
		return fmt.Errorf("failed to close %s session: %w", s.kind, err)
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
