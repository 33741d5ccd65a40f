package orchestration

import (
	"context"
	"time"

	"github.com/relayvoice/relay-core/core/brain"
	"github.com/relayvoice/relay-core/core/live"
	"github.com/relayvoice/relay-core/core/tools"
)

// ListenerSession is the always-on session that hears the microphone, calls
// tools, and decides what should be narrated.
type ListenerSession interface {
	ID() string
	SendAudio(frame []byte) error
	SendToolResponses(responses []live.ToolResponse) error
	Receive() (*live.ServerEvent, error)
	Close() error
}

// NarratorSession is a fresh, history-free session that reads exactly one
// script out loud.
type NarratorSession interface {
	ID() string
	SendScript(script string) error
	Receive() (*live.ServerEvent, error)
	Close() error
}

// SessionDialer opens live sessions on demand.
type SessionDialer interface {
	DialListener(ctx context.Context, declarations []tools.Declaration) (ListenerSession, error)
	DialNarrator(ctx context.Context) (NarratorSession, error)
}

// liveDialer adapts the concrete live client, whose methods return concrete
// session pointers, to the SessionDialer interface.
type liveDialer struct {
	client *live.Client
}

func (d liveDialer) DialListener(ctx context.Context, declarations []tools.Declaration) (ListenerSession, error) {
	return d.client.DialListener(ctx, declarations)
}

func (d liveDialer) DialNarrator(ctx context.Context) (NarratorSession, error) {
	return d.client.DialNarrator(ctx)
}

type OrchestratorOption func(*Orchestrator)

func WithLiveClient(client *live.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.dialer = liveDialer{client: client} }
}

// WithSessionDialer replaces the session dialer wholesale. Primarily useful
// for tests and custom transports.
func WithSessionDialer(dialer SessionDialer) OrchestratorOption {
	return func(o *Orchestrator) { o.dialer = dialer }
}

type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithAudioInput(client AudioInput) OrchestratorOption {
	return func(o *Orchestrator) { o.audioInput = client }
}

type AudioOutput interface {
	SendAudio(audio []byte) error
}

func WithAudioOutput(client AudioOutput) OrchestratorOption {
	return func(o *Orchestrator) { o.audioOutput = client }
}

func WithTools(toolset ...tools.Tool) OrchestratorOption {
	return func(o *Orchestrator) {
		for _, tool := range toolset {
			o.registry.Register(tool)
		}
	}
}

// WithBrain registers the ask_brain tool backed by the reasoning client.
func WithBrain(client *brain.Client) OrchestratorOption {
	return func(o *Orchestrator) { o.registry.Register(brain.AskTool(client)) }
}

// WithReconnectDelay overrides the pause between listening session attempts.
func WithReconnectDelay(delay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if delay > 0 {
			o.reconnectDelay = delay
		}
	}
}

type OrchestrateOptions struct {
	onUserTranscript      func(text string)
	onAgentTranscript     func(text string)
	onNarrationTranscript func(text string)
	onHandoffStarted      func(id, script string)
	onHandoffEnded        func(id string)
	onToolCallStarted     func(id, name string)
	onToolCallEnded       func(id, name string)
	onSessionConnected    func(sessionID string)
	onSessionClosed       func(sessionID string)
}

type OrchestrateOption func(*OrchestrateOptions)

func WithOnUserTranscript(callback func(text string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onUserTranscript = callback }
}

func WithOnAgentTranscript(callback func(text string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onAgentTranscript = callback }
}

func WithOnNarrationTranscript(callback func(text string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onNarrationTranscript = callback }
}

func WithOnHandoffStarted(callback func(id, script string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onHandoffStarted = callback }
}

func WithOnHandoffEnded(callback func(id string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onHandoffEnded = callback }
}

func WithOnToolCallStarted(callback func(id, name string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onToolCallStarted = callback }
}

func WithOnToolCallEnded(callback func(id, name string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onToolCallEnded = callback }
}

func WithOnSessionConnected(callback func(sessionID string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onSessionConnected = callback }
}

func WithOnSessionClosed(callback func(sessionID string)) OrchestrateOption {
	return func(o *OrchestrateOptions) { o.onSessionClosed = callback }
}
