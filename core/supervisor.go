package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relayvoice/relay-core/core/events"
	"github.com/relayvoice/relay-core/core/live"
)

const defaultReconnectDelay = time.Second

// supervisor keeps a listening session alive forever, reconnecting after
// drops, faults, and the deliberate restart that follows a completed
// narration.
type supervisor struct {
	dial           func(ctx context.Context) (ListenerSession, error)
	router         *eventRouter
	narration      *handoffController
	capture        *captureStream
	emit           eventEmitter
	reconnectDelay time.Duration

	mu              sync.Mutex
	session         ListenerSession
	deliberateClose bool
}

// Run dials and serves listening sessions until ctx ends.
func (s *supervisor) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt++
		s.emit(events.NewSessionConnecting(attempt))

		session, err := s.dial(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to connect listening session",
				"error", err, "attempt", attempt)
			if !s.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}
		attempt = 0

		s.setSession(session)
		s.emit(events.NewSessionConnected(session.ID()))
		logger.InfoContext(ctx, "Listening session active", "session", session.ID())

		serveErr := s.serve(ctx, session)

		s.clearSession()
		session.Close()
		s.router.ResetSession()
		deliberate := s.consumeDeliberateClose()

		switch {
		case ctx.Err() != nil:
			s.emit(events.NewSessionClosed(session.ID(), true, "shutting down"))
			return ctx.Err()
		case deliberate:
			logger.InfoContext(ctx, "Listening session restarting after narration", "session", session.ID())
			s.emit(events.NewSessionClosed(session.ID(), true, "restart after narration"))
		case live.IsConnectionClosed(serveErr):
			logger.InfoContext(ctx, "Listening session connection closed, reconnecting", "session", session.ID())
			s.emit(events.NewSessionClosed(session.ID(), false, "connection closed"))
		default:
			logger.ErrorContext(ctx, "Listening session faulted, reconnecting",
				"session", session.ID(), "error", serveErr)
			s.emit(events.NewSessionClosed(session.ID(), false, fmt.Sprintf("fault: %v", serveErr)))
		}

		if !s.sleep(ctx) {
			return ctx.Err()
		}
	}
}

func (s *supervisor) serve(ctx context.Context, session ListenerSession) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error { return s.uploadCapture(gctx, session) })
	group.Go(func() error { return s.receiveEvents(gctx, session) })
	group.Go(func() error {
		// Receive has no context; close the session to unblock it when any
		// sibling goroutine fails or ctx ends.
		<-gctx.Done()
		session.Close()
		return gctx.Err()
	})

	return group.Wait()
}

// uploadCapture streams microphone frames to the session. While a narration
// holds the speaker, frames keep draining but are not uploaded, so the
// listening session never hears the narrator.
func (s *supervisor) uploadCapture(ctx context.Context, session ListenerSession) error {
	if s.capture == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-s.capture.Frames():
			if s.narration.NarrationActive() {
				continue
			}
			if err := session.SendAudio(frame); err != nil {
				return fmt.Errorf("failed to upload capture frame: %w", err)
			}
		}
	}
}

func (s *supervisor) receiveEvents(ctx context.Context, session ListenerSession) error {
	for {
		event, err := session.Receive()
		if err != nil {
			return err
		}
		s.router.Dispatch(ctx, session, event)
	}
}

// RequestRestart closes the current session so the supervisor reconnects with
// fresh context. Used after a completed narration.
func (s *supervisor) RequestRestart() {
	s.mu.Lock()
	s.deliberateClose = true
	session := s.session
	s.mu.Unlock()

	if session != nil {
		session.Close()
	}
}

func (s *supervisor) setSession(session ListenerSession) {
	s.mu.Lock()
	s.session = session
	s.deliberateClose = false
	s.mu.Unlock()
}

func (s *supervisor) clearSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

func (s *supervisor) consumeDeliberateClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	deliberate := s.deliberateClose
	s.deliberateClose = false
	return deliberate
}

func (s *supervisor) sleep(ctx context.Context) bool {
	delay := s.reconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
