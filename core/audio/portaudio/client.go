// Package portaudio is an alternative device backend. Capture and playback
// run on separate streams because their sample rates differ.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/relayvoice/relay-core/core/audio"
)

type Client struct {
	bufferSize int

	inputStream  *portaudio.Stream
	outputStream *portaudio.Stream

	in  []int16
	out []int16

	leftoverAudio []byte

	mu        sync.Mutex
	capturing bool
	stop      chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	inputStream, err := portaudio.OpenDefaultStream(1, 0, audio.CaptureSampleRate, bufferSize, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}

	out := make([]int16, bufferSize)
	outputStream, err := portaudio.OpenDefaultStream(0, 1, audio.PlaybackSampleRate, bufferSize, out)
	if err != nil {
		inputStream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}

	if err := outputStream.Start(); err != nil {
		inputStream.Close()
		outputStream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start playback stream: %w", err)
	}

	return &Client{
		bufferSize:   bufferSize,
		inputStream:  inputStream,
		outputStream: outputStream,
		in:           in,
		out:          out,
	}, nil
}

// StartCapture reads microphone buffers on a background goroutine until
// StopCapture is called or ctx ends.
func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capturing {
		return nil
	}

	if err := c.inputStream.Start(); err != nil {
		return fmt.Errorf("failed to start capture stream: %w", err)
	}
	c.capturing = true
	c.stop = make(chan struct{})
	stop := c.stop

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
			}

			if err := c.inputStream.Read(); err != nil {
				continue
			}

			audioBuffer := bytes.Buffer{}
			binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onAudio(audioBuffer.Bytes())
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return nil
	}

	close(c.stop)
	c.capturing = false
	if err := c.inputStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	return nil
}

func (c *Client) StartPlayback(context.Context) error {
	if err := c.outputStream.Start(); err != nil {
		return fmt.Errorf("failed to start playback stream: %w", err)
	}
	return nil
}

func (c *Client) StopPlayback() error {
	c.ClearBuffer()
	if err := c.outputStream.Abort(); err != nil {
		return fmt.Errorf("failed to stop playback stream: %w", err)
	}
	return nil
}

// SendAudio writes complete device buffers and keeps the remainder for the
// next call.
func (c *Client) SendAudio(audio []byte) error {
	bufferSize := c.bufferSize * 2

	audio = append(c.leftoverAudio, audio...)
	for i := range len(audio)/bufferSize + 1 {
		if (i+1)*bufferSize > len(audio) {
			c.leftoverAudio = make([]byte, len(audio)-i*bufferSize)
			copy(c.leftoverAudio, audio[i*bufferSize:])
			break
		}

		binary.Read(bytes.NewBuffer(audio[i*bufferSize:(i+1)*bufferSize]), binary.LittleEndian, c.out)
		if err := c.outputStream.Write(); err != nil {
			return fmt.Errorf("failed to write playback buffer: %w", err)
		}
	}

	return nil
}

func (c *Client) ClearBuffer() {
	c.leftoverAudio = make([]byte, 0)
}

func (c *Client) Close() {
	c.StopCapture()
	c.inputStream.Close()
	c.outputStream.Close()
	portaudio.Terminate()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.CaptureEncodingInfo()
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.PlaybackEncodingInfo()
}
