// Package bootstrap builds the application services from config for the CLIs.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"speech-relay/config"
	"speech-relay/internal/application"
	"speech-relay/internal/infra/anthropic"
	"speech-relay/internal/infra/gemini"
	"speech-relay/internal/infra/google"
	"speech-relay/internal/infra/openai"
	"speech-relay/internal/infra/pushover"
	"speech-relay/internal/logging"
)

// Load reads .env, then the config file (defaults when it is missing), and
// builds the logger writing to w.
func Load(configPath string, verbose bool, w io.Writer) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logging.Setup(cfg.Log, verbose, w), nil
}

func NewRecognizer(cfg config.SpeechConfig, logger *slog.Logger) application.Recognizer {
	switch cfg.Provider {
	case "whisper":
		if cfg.BaseURL != "" {
			return openai.NewWhisperClientWithURL(cfg.APIKey, cfg.Language, cfg.BaseURL)
		}
		return openai.NewWhisperClient(cfg.APIKey, cfg.Language)
	case "google":
	default:
		logger.Warn("unknown speech provider, using google", "provider", cfg.Provider)
	}

	if cfg.BaseURL != "" {
		return google.NewSpeechClientWithURL(cfg.APIKey, cfg.Language, cfg.BaseURL)
	}
	return google.NewSpeechClient(cfg.APIKey, cfg.Language)
}

// NewGeneratorFactory returns the factory the responder calls with the
// credential it resolved from the environment.
func NewGeneratorFactory(cfg *config.Config, logger *slog.Logger) application.GeneratorFactory {
	switch cfg.Responder.Provider {
	case "claude":
		ac := cfg.Anthropic
		return func(_ context.Context, apiKey string) (application.Generator, error) {
			if ac.BaseURL != "" {
				return anthropic.NewClaudeClientWithURL(apiKey, ac.Model, ac.BaseURL), nil
			}
			return anthropic.NewClaudeClient(apiKey, ac.Model), nil
		}
	case "gemini":
	default:
		logger.Warn("unknown responder provider, using gemini", "provider", cfg.Responder.Provider)
	}

	gc := cfg.Gemini
	switch gc.Transport {
	case "rest":
		return func(_ context.Context, apiKey string) (application.Generator, error) {
			if gc.BaseURL != "" {
				return gemini.NewClientWithURL(apiKey, gc.Model, gc.BaseURL).WithMaxOutputTokens(gc.MaxOutputTokens), nil
			}
			return gemini.NewClient(apiKey, gc.Model).WithMaxOutputTokens(gc.MaxOutputTokens), nil
		}
	case "sdk":
	default:
		logger.Warn("unknown gemini transport, using sdk", "transport", gc.Transport)
	}

	return func(ctx context.Context, apiKey string) (application.Generator, error) {
		client, err := gemini.NewSDKClient(ctx, apiKey, gc.Model, gc.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		return client, nil
	}
}

func NewTranscriber(cfg *config.Config, logger *slog.Logger) *application.Transcriber {
	return application.NewTranscriber(
		NewRecognizer(cfg.Speech, logger),
		application.TranscriberConfig{
			MinFileSize:       cfg.Speech.MinFileSize,
			InitialThreshold:  cfg.Speech.InitialThreshold,
			FallbackThreshold: cfg.Speech.FallbackThreshold,
			AmbientWindow:     cfg.Speech.AmbientWindow,
		},
		logger,
	)
}

func NewResponder(cfg *config.Config, logger *slog.Logger) *application.Responder {
	return application.NewResponder(
		NewGeneratorFactory(cfg, logger),
		application.ResponderConfig{
			APIKeyEnv:      cfg.APIKeyEnv(),
			TranscriptPath: cfg.Output.TranscriptFile,
			ReplyPath:      cfg.Output.ReplyFile,
			TempInputPath:  cfg.Output.TempInputFile,
			Timeout:        cfg.Responder.Timeout,
		},
		logger,
	)
}

func NewNotifier(cfg config.PushoverConfig) application.Notifier {
	if cfg.Enabled {
		return pushover.NewClient(cfg.Token, cfg.UserKey)
	}
	return &application.NoopNotifier{}
}
