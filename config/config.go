// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultListenModel  = "gemini-2.5-flash-native-audio-preview-12-2025"
	defaultNarrateModel = "gemini-2.5-flash-native-audio-preview-12-2025"
	defaultBrainModel   = "gpt-5.2"
	defaultWakePhrase   = "computer"

	defaultReconnectDelay = time.Second
)

type Config struct {
	GeminiAPIKey string
	OpenAIAPIKey string

	ListenModel  string
	NarrateModel string
	BrainModel   string

	WakePhrase string
	Voice      string

	// Workspace is the directory file tools are confined to.
	Workspace string

	ReconnectDelay time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		ListenModel:    envOr("GEMINI_MODEL", defaultListenModel),
		NarrateModel:   envOr("NARRATE_MODEL", defaultNarrateModel),
		BrainModel:     envOr("BRAIN_MODEL", defaultBrainModel),
		WakePhrase:     envOr("WAKE_PHRASE", defaultWakePhrase),
		Voice:          os.Getenv("NARRATE_VOICE"),
		Workspace:      os.Getenv("WORKSPACE_DIR"),
		ReconnectDelay: defaultReconnectDelay,
	}

	if cfg.Workspace == "" {
		workingDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		cfg.Workspace = workingDir
	}

	if raw := os.Getenv("RECONNECT_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid RECONNECT_DELAY_MS %q", raw)
		}
		cfg.ReconnectDelay = time.Duration(ms) * time.Millisecond
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
