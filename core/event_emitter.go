package orchestration

import "github.com/relayvoice/relay-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts OrchestrateOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.UserTranscript:
			if opts.onUserTranscript != nil {
				opts.onUserTranscript(typedEvent.Text)
			}
		case events.AgentTranscript:
			if opts.onAgentTranscript != nil {
				opts.onAgentTranscript(typedEvent.Text)
			}
		case events.NarrationTranscript:
			if opts.onNarrationTranscript != nil {
				opts.onNarrationTranscript(typedEvent.Text)
			}
		case events.HandoffStarted:
			if opts.onHandoffStarted != nil {
				opts.onHandoffStarted(typedEvent.ID, typedEvent.Script)
			}
		case events.HandoffCompleted:
			if opts.onHandoffEnded != nil {
				opts.onHandoffEnded(typedEvent.ID)
			}
		case events.HandoffCancelled:
			if opts.onHandoffEnded != nil {
				opts.onHandoffEnded(typedEvent.ID)
			}
		case events.HandoffFailed:
			if opts.onHandoffEnded != nil {
				opts.onHandoffEnded(typedEvent.ID)
			}
		case events.ToolCallStarted:
			if opts.onToolCallStarted != nil {
				opts.onToolCallStarted(typedEvent.ID, typedEvent.Name)
			}
		case events.ToolCallCompleted:
			if opts.onToolCallEnded != nil {
				opts.onToolCallEnded(typedEvent.ID, typedEvent.Name)
			}
		case events.ToolCallFailed:
			if opts.onToolCallEnded != nil {
				opts.onToolCallEnded(typedEvent.ID, typedEvent.Name)
			}
		case events.SessionConnected:
			if opts.onSessionConnected != nil {
				opts.onSessionConnected(typedEvent.SessionID)
			}
		case events.SessionClosed:
			if opts.onSessionClosed != nil {
				opts.onSessionClosed(typedEvent.SessionID)
			}
		}
	}
}
