package orchestration

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/relayvoice/relay-core/core/events"
)

type HandoffState string

const (
	HandoffPending   HandoffState = "pending"
	HandoffRunning   HandoffState = "running"
	HandoffCompleted HandoffState = "completed"
	HandoffCancelled HandoffState = "cancelled"
	HandoffFailed    HandoffState = "failed"
)

type handoffTask struct {
	id     string
	script string
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state HandoffState
	err   error
}

func (t *handoffTask) setState(state HandoffState, err error) {
	t.mu.Lock()
	t.state = state
	t.err = err
	t.mu.Unlock()
}

func (t *handoffTask) State() (HandoffState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.err
}

// handoffController owns narration. At most one narrating session speaks at a
// time; starting a new handoff cancels the previous one and drains queued
// playback so stale audio never reaches the speaker.
type handoffController struct {
	dial            func(ctx context.Context) (NarratorSession, error)
	playback        *playbackQueue
	restartListener func()
	emit            eventEmitter

	// baseCtx outlives any single listening session; narration must survive
	// the deliberate restart it itself triggers.
	baseCtx context.Context

	// narrating enforces one speaker at a time.
	narrating sync.Mutex
	active    atomic.Bool

	mu      sync.Mutex
	current *handoffTask
}

// NarrationActive reports whether a narrating session currently holds the
// speaker. Capture upload is suppressed while true.
func (h *handoffController) NarrationActive() bool {
	return h.active.Load()
}

// Start accepts a script for narration, superseding any narration in flight.
// It blocks until the superseded narration has fully stopped, then drains
// pending playback before the new narration begins.
func (h *handoffController) Start(script string) string {
	ctx, cancel := context.WithCancel(h.baseCtx)
	task := &handoffTask{
		id:     uuid.NewString(),
		script: script,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  HandoffPending,
	}

	h.mu.Lock()
	previous := h.current
	h.current = task
	h.mu.Unlock()

	if previous != nil {
		previous.cancel()
		<-previous.done
	}
	h.playback.Drain()

	h.emit(events.NewHandoffStarted(task.id, script))
	go h.run(ctx, task)
	return task.id
}

// Cancel stops the narration in flight, if any, and waits for it to unwind.
func (h *handoffController) Cancel() {
	h.mu.Lock()
	current := h.current
	h.mu.Unlock()

	if current == nil {
		return
	}
	current.cancel()
	<-current.done
}

func (h *handoffController) run(ctx context.Context, task *handoffTask) {
	defer close(task.done)
	defer task.cancel()

	h.narrating.Lock()
	defer h.narrating.Unlock()

	if ctx.Err() != nil {
		h.finish(ctx, task, HandoffCancelled, nil)
		return
	}

	task.setState(HandoffRunning, nil)
	h.active.Store(true)
	defer h.active.Store(false)

	lineage := h.playback.Lineage()

	session, err := h.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			h.finish(ctx, task, HandoffCancelled, nil)
		} else {
			h.finish(ctx, task, HandoffFailed, err)
		}
		return
	}

	// Receive has no context; closing the session is the only way to unblock
	// it when the handoff is cancelled.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-watchDone:
		}
	}()
	defer session.Close()

	if err := session.SendScript(task.script); err != nil {
		if ctx.Err() != nil {
			h.finish(ctx, task, HandoffCancelled, nil)
		} else {
			h.finish(ctx, task, HandoffFailed, err)
		}
		return
	}

	for {
		event, err := session.Receive()
		if err != nil {
			if ctx.Err() != nil {
				h.finish(ctx, task, HandoffCancelled, nil)
			} else {
				h.finish(ctx, task, HandoffFailed, err)
			}
			return
		}

		for _, frame := range event.Audio {
			h.playback.Enqueue(lineage, frame)
		}
		if event.OutputTranscript != "" {
			h.emit(events.NewNarrationTranscript(task.id, event.OutputTranscript))
		}
		if event.TurnComplete {
			break
		}
	}

	h.finish(ctx, task, HandoffCompleted, nil)

	// A finished narration leaves stale context in the listening session;
	// restart it fresh. Failed or cancelled narrations spoke nothing new, so
	// the session keeps running.
	if h.restartListener != nil {
		h.restartListener()
	}
}

func (h *handoffController) finish(ctx context.Context, task *handoffTask, state HandoffState, err error) {
	task.setState(state, err)

	switch state {
	case HandoffCompleted:
		logger.InfoContext(ctx, "Narration completed", "handoff", task.id)
		h.emit(events.NewHandoffCompleted(task.id))
	case HandoffCancelled:
		logger.InfoContext(ctx, "Narration cancelled", "handoff", task.id)
		h.emit(events.NewHandoffCancelled(task.id))
	case HandoffFailed:
		logger.ErrorContext(ctx, "Narration failed", "handoff", task.id, "error", err)
		message := ""
		if err != nil {
			message = err.Error()
		}
		h.emit(events.NewHandoffFailed(task.id, message))
	}
}
