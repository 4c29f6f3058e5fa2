//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gordonklaus/portaudio"
)

// MicrophoneSource records one utterance from the default input device.
type MicrophoneSource struct {
	sampleRate  int
	maxDuration int // seconds
	silence     float64
	logger      *slog.Logger

	stream *portaudio.Stream
	buffer []int16
}

func NewMicrophoneSource(sampleRate, maxSeconds int, silenceThreshold float64, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate:  sampleRate,
		maxDuration: maxSeconds,
		silence:     silenceThreshold,
		logger:      logger,
	}
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	m.buffer = make([]int16, bufferFrames)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.buffer), m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sample_rate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

// Record captures audio until a second of silence follows speech, or the
// maximum duration is reached, and returns it as WAV.
func (m *MicrophoneSource) Record(ctx context.Context) ([]byte, error) {
	samples := make([]int16, 0, m.sampleRate*m.maxDuration)
	silentFrames := 0
	heardSpeech := false

	for len(samples) < m.sampleRate*m.maxDuration {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, m.buffer...)

		if rms16(m.buffer) > m.silence {
			heardSpeech = true
			silentFrames = 0
		} else {
			silentFrames += len(m.buffer)
		}

		if heardSpeech && silentFrames > m.sampleRate {
			break
		}
	}

	m.logger.Debug("recorded utterance", "frames", len(samples))
	return EncodeWAV(samples, m.sampleRate, 1), nil
}

func rms16(buf []int16) float64 {
	var sum float64
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(buf)))
}
