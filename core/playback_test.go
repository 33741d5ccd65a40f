package orchestration

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPlaybackQueueFIFO(t *testing.T) {
	queue := newPlaybackQueue(4)
	lineage := queue.Lineage()

	queue.Enqueue(lineage, []byte{1})
	queue.Enqueue(lineage, []byte{2})
	queue.Enqueue(lineage, []byte{3})

	for _, expected := range []byte{1, 2, 3} {
		frame, ok := queue.next()
		if !ok {
			t.Fatalf("expected frame %d to be queued", expected)
		}
		if frame[0] != expected {
			t.Errorf("expected frame %d, got %d", expected, frame[0])
		}
	}
	if _, ok := queue.next(); ok {
		t.Error("expected queue to be empty")
	}
}

func TestPlaybackQueueDropsOldestWhenFull(t *testing.T) {
	queue := newPlaybackQueue(2)
	lineage := queue.Lineage()

	queue.Enqueue(lineage, []byte{1})
	queue.Enqueue(lineage, []byte{2})
	queue.Enqueue(lineage, []byte{3})

	if queue.len() != 2 {
		t.Fatalf("expected queue length 2, got %d", queue.len())
	}
	frame, _ := queue.next()
	if frame[0] != 2 {
		t.Errorf("expected oldest frame to have been dropped, got %d", frame[0])
	}
}

func TestPlaybackQueueRejectsStaleLineage(t *testing.T) {
	queue := newPlaybackQueue(4)
	stale := queue.Lineage()
	queue.Enqueue(stale, []byte{1})

	fresh := queue.Drain()
	if queue.len() != 0 {
		t.Fatal("expected drain to empty the queue")
	}

	if queue.Enqueue(stale, []byte{2}) {
		t.Error("expected stale lineage frame to be rejected")
	}
	if !queue.Enqueue(fresh, []byte{3}) {
		t.Error("expected fresh lineage frame to be accepted")
	}
	if queue.len() != 1 {
		t.Errorf("expected a single queued frame, got %d", queue.len())
	}
}

type recordingOutput struct {
	sent chan []byte
}

func (o *recordingOutput) SendAudio(audio []byte) error {
	o.sent <- audio
	return nil
}

func TestPlaybackRunWritesFrames(t *testing.T) {
	queue := newPlaybackQueue(8)
	output := &recordingOutput{sent: make(chan []byte, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.run(ctx, output)

	lineage := queue.Lineage()
	queue.Enqueue(lineage, []byte{1})
	queue.Enqueue(lineage, []byte{2})

	for _, expected := range []byte{1, 2} {
		select {
		case frame := <-output.sent:
			if !bytes.Equal(frame, []byte{expected}) {
				t.Errorf("expected frame %d, got %v", expected, frame)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for playback frame")
		}
	}
}

type restartableOutput struct {
	failing  atomic.Bool
	stops    atomic.Int32
	starts   atomic.Int32
	reopened chan struct{}
	sent     chan []byte
}

func (o *restartableOutput) SendAudio(audio []byte) error {
	if o.failing.Load() {
		return errors.New("device gone")
	}
	o.sent <- audio
	return nil
}

func (o *restartableOutput) StopPlayback() error {
	o.stops.Add(1)
	return nil
}

func (o *restartableOutput) StartPlayback(context.Context) error {
	o.starts.Add(1)
	o.failing.Store(false)
	o.reopened <- struct{}{}
	return nil
}

func TestPlaybackRunReopensOutputAfterRepeatedFailures(t *testing.T) {
	queue := newPlaybackQueue(16)
	output := &restartableOutput{
		reopened: make(chan struct{}, 1),
		sent:     make(chan []byte, 16),
	}
	output.failing.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.run(ctx, output)

	lineage := queue.Lineage()
	for i := 0; i < playbackWriteFailureLimit; i++ {
		queue.Enqueue(lineage, []byte{byte(i)})
	}

	select {
	case <-output.reopened:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback device reopen")
	}
	if output.stops.Load() != 1 || output.starts.Load() != 1 {
		t.Errorf("expected one stop and one start, got %d and %d",
			output.stops.Load(), output.starts.Load())
	}

	queue.Enqueue(lineage, []byte{42})
	select {
	case frame := <-output.sent:
		if frame[0] != 42 {
			t.Errorf("expected frame 42 after reopen, got %d", frame[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame after reopen")
	}
}
