// Package orchestration coordinates a wake-phrase voice assistant built on
// two live session roles. A listening session hears the microphone and routes
// every request through a tool call; answers are spoken by short-lived
// narrating sessions that read a script verbatim. The listening session's own
// audio is never played.
package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/relayvoice/relay-core/core/events"
	"github.com/relayvoice/relay-core/core/tools"
)

type Orchestrator struct {
	dialer         SessionDialer
	registry       *tools.Registry
	audioInput     AudioInput
	audioOutput    AudioOutput
	reconnectDelay time.Duration

	playback   *playbackQueue
	capture    *captureStream
	executor   *toolExecutor
	router     *eventRouter
	handoff    *handoffController
	supervisor *supervisor

	emitter eventEmitter

	closeOnce   sync.Once
	baseContext context.Context
}

func New(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:       tools.NewRegistry(),
		reconnectDelay: defaultReconnectDelay,
		playback:       newPlaybackQueue(playbackQueueCapacity),
		capture:        newCaptureStream(),
		emitter:        noopEventEmitter,
		baseContext:    context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}

	o.executor = &toolExecutor{registry: o.registry}
	o.handoff = &handoffController{
		dial: func(ctx context.Context) (NarratorSession, error) {
			return o.dialer.DialNarrator(ctx)
		},
		playback: o.playback,
		emit:     o.emitEvent,
		baseCtx:  context.Background(),
	}
	o.router = &eventRouter{
		executor:  o.executor,
		processed: newProcessedCalls(processedCallLimit),
		handoff:   o.handoff,
		emit:      o.emitEvent,
	}
	o.supervisor = &supervisor{
		dial: func(ctx context.Context) (ListenerSession, error) {
			return o.dialer.DialListener(ctx, o.registry.Declarations())
		},
		router:         o.router,
		narration:      o.handoff,
		capture:        o.capture,
		emit:           o.emitEvent,
		reconnectDelay: o.reconnectDelay,
	}
	o.handoff.restartListener = o.supervisor.RequestRestart

	return o
}

// Run connects the listening session and serves it until ctx ends. It blocks
// for the lifetime of the assistant.
//
// Contract: call Run at most once per orchestrator instance. Repeated or
// concurrent calls are unsupported and may race while callbacks are being
// reconfigured.
func (o *Orchestrator) Run(ctx context.Context, opts ...OrchestrateOption) error {
	if o.dialer == nil {
		return fmt.Errorf("no live client configured")
	}

	options := OrchestrateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	o.emitter = newCallbackEventEmitter(options)
	o.baseContext = ctx
	o.handoff.baseCtx = ctx
	o.supervisor.reconnectDelay = o.reconnectDelay

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(runCtx)
	if o.audioOutput != nil {
		group.Go(func() error { return o.playback.run(gctx, o.audioOutput) })
	}
	group.Go(func() error { return o.supervisor.Run(gctx) })

	if o.audioInput != nil {
		if err := o.audioInput.StartCapture(gctx, o.capture.push); err != nil {
			cancel()
			group.Wait()
			return fmt.Errorf("failed to start audio capture: %w", err)
		}
		defer o.audioInput.StopCapture()
	}

	err := group.Wait()
	o.handoff.Cancel()
	return err
}

// Close stops capture and any narration in flight. Safe to call concurrently
// with Run shutting down.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		if o.audioInput != nil {
			if err := o.audioInput.StopCapture(); err != nil {
				recordedErr := fmt.Errorf("failed to stop audio capture: %w", err)
				span := trace.SpanFromContext(o.baseContext)
				span.RecordError(recordedErr)
				span.SetStatus(codes.Error, recordedErr.Error())
			}
		}

		o.handoff.Cancel()
		o.supervisor.RequestRestart()
	})
}

// Tools exposes the registry so callers can register tools after
// construction but before Run.
func (o *Orchestrator) Tools() *tools.Registry {
	return o.registry
}

func (o *Orchestrator) emitEvent(event events.Event) {
	if o.emitter == nil {
		return
	}
	o.emitter(event)
}
