package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"speech-relay/internal/domain"
	"speech-relay/internal/infra/audio"
)

type TranscriberConfig struct {
	MinFileSize       int64
	InitialThreshold  float64
	FallbackThreshold float64
	AmbientWindow     time.Duration
}

func DefaultTranscriberConfig() TranscriberConfig {
	return TranscriberConfig{
		MinFileSize:       domain.MinAudioFileSize,
		InitialThreshold:  domain.DefaultEnergyThreshold,
		FallbackThreshold: domain.FallbackEnergyThreshold,
		AmbientWindow:     domain.AmbientNoiseWindow,
	}
}

// Transcriber turns a WAV file into text. A content-level miss is retried
// once at a lower energy threshold; service errors are never retried.
type Transcriber struct {
	recognizer Recognizer
	cfg        TranscriberConfig
	logger     *slog.Logger
}

func NewTranscriber(recognizer Recognizer, cfg TranscriberConfig, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		recognizer: recognizer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Validate reports whether the file is worth sending to the recognizer.
func (t *Transcriber) Validate(audioPath string) bool {
	_, ok := t.validate(audioPath)
	return ok
}

func (t *Transcriber) validate(audioPath string) (domain.AudioSource, bool) {
	info, err := os.Stat(audioPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Error("audio file does not exist", "path", audioPath)
		} else {
			t.logger.Error("checking audio file", "path", audioPath, "error", err)
		}
		return domain.AudioSource{}, false
	}
	if info.IsDir() {
		t.logger.Error("audio path is a directory", "path", audioPath)
		return domain.AudioSource{}, false
	}

	src := domain.AudioSource{Path: audioPath, Size: info.Size()}
	if src.Size < t.cfg.MinFileSize {
		t.logger.Warn("audio file is very small", "path", audioPath, "bytes", src.Size)
		return src, false
	}

	t.logger.Debug("audio file", "path", audioPath, "bytes", src.Size)
	return src, true
}

// Transcribe never fails: every problem is folded into the returned result.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (result domain.TranscriptResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.AudioProcessingFailed(fmt.Errorf("%v", r))
		}
	}()

	src, ok := t.validate(audioPath)
	if !ok {
		return domain.InvalidAudio(nil)
	}

	t.logger.Debug("starting speech recognition")

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return domain.AudioProcessingFailed(err)
	}

	clip, err := audio.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.AudioProcessingFailed(err)
	}

	t.logger.Debug("adjusting for ambient noise", "window", t.cfg.AmbientWindow)
	threshold := clip.AdjustForAmbientNoise(t.cfg.AmbientWindow, t.cfg.InitialThreshold)

	text, err := t.recognize(ctx, data, domain.RecognitionAttempt{Number: 1, EnergyThreshold: threshold})
	if err == nil {
		return domain.Transcribed(text)
	}
	if !errors.Is(err, ErrUnintelligible) {
		return t.failure(err)
	}

	t.logger.Debug("trying again with higher sensitivity")

	text, err = t.recognize(ctx, data, domain.RecognitionAttempt{Number: 2, EnergyThreshold: t.cfg.FallbackThreshold})
	if err == nil {
		return domain.Transcribed(text)
	}
	if errors.Is(err, ErrUnintelligible) {
		return domain.Unintelligible()
	}
	return t.failure(err)
}

func (t *Transcriber) recognize(ctx context.Context, wav []byte, attempt domain.RecognitionAttempt) (string, error) {
	t.logger.Debug("recognizing speech",
		"attempt", attempt.Number,
		"energy_threshold", attempt.EnergyThreshold,
	)

	text, err := t.recognizer.Recognize(ctx, wav, attempt)
	if err != nil {
		t.logger.Debug("recognition failed", "attempt", attempt.Number, "error", err)
		return "", err
	}

	t.logger.Debug("recognition result", "attempt", attempt.Number, "text", text)
	return text, nil
}

func (t *Transcriber) failure(err error) domain.TranscriptResult {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return domain.RecognitionServiceFailed(serviceErr)
	}
	return domain.AudioProcessingFailed(err)
}
