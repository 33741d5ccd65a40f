// Command relayd runs the voice assistant against the default audio devices.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/relayvoice/relay-core/config"
	orchestration "github.com/relayvoice/relay-core/core"
	"github.com/relayvoice/relay-core/core/audio/miniaudio"
	"github.com/relayvoice/relay-core/core/brain"
	"github.com/relayvoice/relay-core/core/live"
	"github.com/relayvoice/relay-core/core/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		log.Fatalf("Failed to open audio devices: %v", err)
	}
	defer audioClient.Close()

	liveClient, err := live.NewClient(ctx, live.Config{
		APIKey:       cfg.GeminiAPIKey,
		ListenModel:  cfg.ListenModel,
		NarrateModel: cfg.NarrateModel,
		WakePhrase:   cfg.WakePhrase,
		Voice:        cfg.Voice,
	})
	if err != nil {
		log.Fatalf("Failed to create live client: %v", err)
	}

	brainClient := brain.NewClient(cfg.OpenAIAPIKey, cfg.BrainModel)

	orchestrator := orchestration.New(
		orchestration.WithLiveClient(liveClient),
		orchestration.WithAudioInput(audioClient),
		orchestration.WithAudioOutput(audioClient),
		orchestration.WithTools(tools.Builtin(cfg.Workspace)...),
		orchestration.WithBrain(brainClient),
		orchestration.WithReconnectDelay(cfg.ReconnectDelay),
	)
	defer orchestrator.Close()

	log.Printf("Listening. Wake phrase: %q, workspace: %s", cfg.WakePhrase, cfg.Workspace)

	err = orchestrator.Run(ctx,
		orchestration.WithOnUserTranscript(func(text string) {
			log.Printf("[user] %s", text)
		}),
		orchestration.WithOnAgentTranscript(func(text string) {
			log.Printf("[agent] %s", text)
		}),
		orchestration.WithOnNarrationTranscript(func(text string) {
			log.Printf("[narration] %s", text)
		}),
		orchestration.WithOnToolCallStarted(func(id, name string) {
			log.Printf("[tool] %s (%s)", name, id)
		}),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Orchestrator stopped: %v", err)
	}
}
