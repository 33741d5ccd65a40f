package events

const (
	// KindSessionConnecting identifies a listening-session connection attempt.
	KindSessionConnecting Kind = "session.connecting"
	// KindSessionConnected identifies an established listening session.
	KindSessionConnected Kind = "session.connected"
	// KindSessionClosed identifies the end of a listening session, deliberate
	// or faulted.
	KindSessionClosed Kind = "session.closed"
)

// SessionConnecting marks the start of a listening-session connection attempt.
type SessionConnecting struct {
	Base
	Attempt int
}

func NewSessionConnecting(attempt int) SessionConnecting {
	return SessionConnecting{Base: NewBase(KindSessionConnecting), Attempt: attempt}
}

// SessionConnected marks an established listening session.
type SessionConnected struct {
	Base
	SessionID string
}

func NewSessionConnected(sessionID string) SessionConnected {
	return SessionConnected{Base: NewBase(KindSessionConnected), SessionID: sessionID}
}

// SessionClosed marks the end of a listening session. Deliberate closes are
// requested by the handoff controller to force a clean restart and are not
// faults.
type SessionClosed struct {
	Base
	SessionID  string
	Deliberate bool
	Reason     string
}

func NewSessionClosed(sessionID string, deliberate bool, reason string) SessionClosed {
	return SessionClosed{Base: NewBase(KindSessionClosed), SessionID: sessionID, Deliberate: deliberate, Reason: reason}
}
