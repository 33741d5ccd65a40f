package orchestration

import (
	"context"
	"sync"
)

const (
	playbackQueueCapacity     = 256
	playbackWriteFailureLimit = 5
)

// playbackRestarter is implemented by audio outputs whose device can be
// reopened after repeated write failures.
type playbackRestarter interface {
	StopPlayback() error
	StartPlayback(ctx context.Context) error
}

// playbackQueue is the bounded frame buffer between narration receive loops
// and the audio output device. When full, the oldest frames are dropped so
// playback stays near realtime.
//
// Every Drain bumps the lineage; producers enqueue with the lineage they
// observed, so frames from an already-superseded narration are rejected
// instead of being played after the drain.
type playbackQueue struct {
	mu       sync.Mutex
	frames   [][]byte
	lineage  uint64
	capacity int
	dropped  uint64

	updateSignal chan struct{}
}

func newPlaybackQueue(capacity int) *playbackQueue {
	if capacity <= 0 {
		capacity = playbackQueueCapacity
	}
	return &playbackQueue{
		capacity:     capacity,
		updateSignal: make(chan struct{}, 1),
	}
}

func (q *playbackQueue) Lineage() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lineage
}

// Enqueue appends a frame, dropping the oldest one when the queue is full.
// Frames carrying a stale lineage are rejected.
func (q *playbackQueue) Enqueue(lineage uint64, frame []byte) bool {
	q.mu.Lock()
	if lineage != q.lineage {
		q.mu.Unlock()
		return false
	}
	if len(q.frames) >= q.capacity {
		q.frames = q.frames[1:]
		q.dropped++
	}
	q.frames = append(q.frames, frame)
	q.mu.Unlock()

	q.signalUpdate()
	return true
}

// Drain discards all queued frames and returns the new lineage. Frames still
// in flight under the old lineage will be rejected on arrival.
func (q *playbackQueue) Drain() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = nil
	q.lineage++
	return q.lineage
}

func (q *playbackQueue) next() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil, false
	}
	frame := q.frames[0]
	q.frames = q.frames[1:]
	return frame, true
}

func (q *playbackQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

func (q *playbackQueue) signalUpdate() {
	select {
	case q.updateSignal <- struct{}{}:
	default:
	}
}

// run feeds queued frames to the audio output until ctx ends. Write failures
// are non-fatal; after enough consecutive ones the device is reopened if the
// output supports it.
func (q *playbackQueue) run(ctx context.Context, output AudioOutput) error {
	consecutiveFailures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-q.updateSignal:
			}
			continue
		}

		if err := output.SendAudio(frame); err != nil {
			consecutiveFailures++
			logger.WarnContext(ctx, "Failed to write playback frame",
				"error", err, "consecutiveFailures", consecutiveFailures)
			if consecutiveFailures >= playbackWriteFailureLimit {
				q.reopenOutput(ctx, output)
				consecutiveFailures = 0
			}
			continue
		}
		consecutiveFailures = 0
	}
}

func (q *playbackQueue) reopenOutput(ctx context.Context, output AudioOutput) {
	restarter, ok := output.(playbackRestarter)
	if !ok {
		return
	}

	if err := restarter.StopPlayback(); err != nil {
		logger.WarnContext(ctx, "Failed to stop playback device", "error", err)
	}
	if err := restarter.StartPlayback(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to reopen playback device", "error", err)
		return
	}
	logger.InfoContext(ctx, "Reopened playback device after repeated write failures")
}
