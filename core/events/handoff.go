package events

const (
	// KindHandoffStarted identifies the start of a narration handoff.
	KindHandoffStarted Kind = "handoff.started"
	// KindHandoffCompleted identifies a narration spoken to completion.
	KindHandoffCompleted Kind = "handoff.completed"
	// KindHandoffCancelled identifies a narration superseded by a newer one.
	KindHandoffCancelled Kind = "handoff.cancelled"
	// KindHandoffFailed identifies a narration that faulted before completing.
	KindHandoffFailed Kind = "handoff.failed"
)

// HandoffStarted marks a narration handoff being accepted.
type HandoffStarted struct {
	Base
	ID     string
	Script string
}

func NewHandoffStarted(id, script string) HandoffStarted {
	return HandoffStarted{Base: NewBase(KindHandoffStarted), ID: id, Script: script}
}

// HandoffCompleted marks a narration spoken to completion. The listening
// session is restarted after this event.
type HandoffCompleted struct {
	Base
	ID string
}

func NewHandoffCompleted(id string) HandoffCompleted {
	return HandoffCompleted{Base: NewBase(KindHandoffCompleted), ID: id}
}

// HandoffCancelled marks a narration cancelled in favor of a newer one.
type HandoffCancelled struct {
	Base
	ID string
}

func NewHandoffCancelled(id string) HandoffCancelled {
	return HandoffCancelled{Base: NewBase(KindHandoffCancelled), ID: id}
}

// HandoffFailed marks a narration that faulted. The listening session is left
// running; no restart is warranted because nothing was spoken.
type HandoffFailed struct {
	Base
	ID    string
	Error string
}

func NewHandoffFailed(id, err string) HandoffFailed {
	return HandoffFailed{Base: NewBase(KindHandoffFailed), ID: id, Error: err}
}
