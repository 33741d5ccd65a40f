// Package miniaudio provides microphone capture and speaker playback through
// malgo. Capture runs at the 16 kHz upload rate; playback runs at the 24 kHz
// narration rate.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/relayvoice/relay-core/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playbackClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) StartPlayback(_ context.Context) error {
	return c.playbackClient.Start()
}

func (c *Client) StopPlayback() error {
	return c.playbackClient.Stop()
}

func (c *Client) SendAudio(audio []byte) error {
	return c.playbackClient.SendAudio(audio)
}

func (c *Client) ClearBuffer() {
	c.playbackClient.ClearBuffer()
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.CaptureEncodingInfo()
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.PlaybackEncodingInfo()
}
