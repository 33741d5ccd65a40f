package orchestration

import "sync/atomic"

const captureChannelCapacity = 64

// captureStream bridges the audio device callback to the upload goroutine.
// Device callbacks must never block, so frames are copied onto a buffered
// channel and dropped when the consumer falls behind.
type captureStream struct {
	frames  chan []byte
	dropped atomic.Uint64
}

func newCaptureStream() *captureStream {
	return &captureStream{frames: make(chan []byte, captureChannelCapacity)}
}

// push copies the frame; the device reuses the callback buffer.
func (c *captureStream) push(frame []byte) {
	if len(frame) == 0 {
		return
	}

	copied := make([]byte, len(frame))
	copy(copied, frame)

	select {
	case c.frames <- copied:
	default:
		c.dropped.Add(1)
	}
}

func (c *captureStream) Frames() <-chan []byte {
	return c.frames
}

func (c *captureStream) Dropped() uint64 {
	return c.dropped.Load()
}
