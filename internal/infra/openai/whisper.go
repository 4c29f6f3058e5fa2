package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"speech-relay/internal/application"
	"speech-relay/internal/domain"
	"speech-relay/internal/infra/audio"
)

const provider = "whisper"

type WhisperClient struct {
	client   *goopenai.Client
	language string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "")
}

// NewWhisperClientWithURL points the client at another OpenAI compatible
// endpoint, e.g. "http://localhost:8000/v1".
func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperClient{
		client:   goopenai.NewClientWithConfig(cfg),
		language: language,
	}
}

func (c *WhisperClient) Recognize(ctx context.Context, wav []byte, attempt domain.RecognitionAttempt) (string, error) {
	clip, err := audio.Decode(bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("decoding audio: %w", err)
	}

	voiced := clip.TrimSilence(attempt.EnergyThreshold)
	if voiced.Empty() {
		return "", application.ErrUnintelligible
	}

	resp, err := c.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    goopenai.Whisper1,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(voiced.WAV()),
		Language: c.language,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &application.ServiceError{Provider: provider, Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", application.ErrUnintelligible
	}
	return text, nil
}
