// Package live wraps the Gemini Live API behind two session roles: a
// listening session that hears the microphone and routes requests, and a
// narrating session that reads a script out loud and nothing else.
package live

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/relayvoice/relay-core/core/tools"
	"github.com/relayvoice/relay-core/internal/utils"
)

const DefaultWakePhrase = "computer"

const narratorInstruction = "You are ReaderAgent. Read the provided script verbatim. " +
	"Do not add, remove, summarize, or modify words. " +
	"Output only spoken audio."

func listenerInstruction(wakePhrase string) string {
	return fmt.Sprintf("You are MainVoiceAgent. Wake phrase is '%s'. "+
		"If wake phrase is absent, do not respond. "+
		"After wake phrase is present, you must call exactly one tool before any spoken response. "+
		"For current time/date questions, call get_time immediately. "+
		"For complex/general knowledge, call ask_brain. "+
		"After ask_brain returns with do_not_speak_further=true, do not provide any further spoken content. "+
		"ReaderAgent is the only narrator for that answer. "+
		"For local file/time requests, use local tools and answer briefly.",
		wakePhrase,
	)
}

type Config struct {
	APIKey       string
	ListenModel  string
	NarrateModel string

	// WakePhrase gates the listening session; defaults to "computer".
	WakePhrase string

	// Voice optionally selects a prebuilt narration voice.
	Voice string
}

type Client struct {
	config Config
	genai  *genai.Client
}

func NewClient(ctx context.Context, config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.ListenModel == "" || config.NarrateModel == "" {
		return nil, fmt.Errorf("listen and narrate models are required")
	}
	if config.WakePhrase == "" {
		config.WakePhrase = DefaultWakePhrase
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{config: config, genai: client}, nil
}

// DialListener opens the listening session with the given tool declarations.
// Its audio output is transcribed but never meant to be played.
func (c *Client) DialListener(ctx context.Context, declarations []tools.Declaration) (*Session, error) {
	ctx, span := tracer.Start(ctx, "live.DialListener")
	defer span.End()

	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{"AUDIO"},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: listenerInstruction(c.config.WakePhrase)}},
		},
		Tools:                    toGenAITools(declarations),
		Temperature:              utils.Ptr(float32(0)),
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}

	raw, err := c.genai.Live.Connect(ctx, c.config.ListenModel, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect listening session: %w", err)
	}

	session := newSession(raw, SessionKindListener)
	logger.InfoContext(ctx, "Listening session connected",
		"session", session.ID(), "model", c.config.ListenModel, "wakePhrase", c.config.WakePhrase)
	return session, nil
}

// DialNarrator opens a fresh narrating session with no history. The caller
// feeds it a single script and drains audio until the turn completes.
func (c *Client) DialNarrator(ctx context.Context) (*Session, error) {
	ctx, span := tracer.Start(ctx, "live.DialNarrator")
	defer span.End()

	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{"AUDIO"},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: narratorInstruction}},
		},
		Temperature:              utils.Ptr(float32(0)),
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if c.config.Voice != "" {
		config.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.config.Voice},
			},
		}
	}

	raw, err := c.genai.Live.Connect(ctx, c.config.NarrateModel, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect narrating session: %w", err)
	}

	session := newSession(raw, SessionKindNarrator)
	logger.InfoContext(ctx, "Narrating session connected",
		"session", session.ID(), "model", c.config.NarrateModel)
	return session, nil
}
