package events

const (
	// KindUserTranscript identifies a transcript fragment of user speech heard
	// by the listening session.
	KindUserTranscript Kind = "transcript.user"
	// KindAgentTranscript identifies a transcript fragment of the listening
	// session's own (muted) output.
	KindAgentTranscript Kind = "transcript.agent"
	// KindNarrationTranscript identifies a transcript fragment spoken by a
	// narrating session.
	KindNarrationTranscript Kind = "transcript.narration"
)

// UserTranscript carries a fragment of transcribed user speech.
type UserTranscript struct {
	Base
	Text string
}

func NewUserTranscript(text string) UserTranscript {
	return UserTranscript{Base: NewBase(KindUserTranscript), Text: text}
}

// AgentTranscript carries a fragment of the listening session's own output
// text. The listening session's audio is never played, so this is the only
// trace of what it would have said.
type AgentTranscript struct {
	Base
	Text string
}

func NewAgentTranscript(text string) AgentTranscript {
	return AgentTranscript{Base: NewBase(KindAgentTranscript), Text: text}
}

// NarrationTranscript carries a fragment of what the narrating session
// actually spoke.
type NarrationTranscript struct {
	Base
	HandoffID string
	Text      string
}

func NewNarrationTranscript(handoffID, text string) NarrationTranscript {
	return NarrationTranscript{Base: NewBase(KindNarrationTranscript), HandoffID: handoffID, Text: text}
}
