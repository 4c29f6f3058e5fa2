package domain

import "time"

// MinAudioFileSize is the smallest WAV file considered a plausible recording.
// Anything below it is almost certainly an empty or truncated capture.
const MinAudioFileSize = 1000

const (
	DefaultEnergyThreshold  = 300.0
	FallbackEnergyThreshold = 50.0
	AmbientNoiseWindow      = 500 * time.Millisecond
)

// AudioSource is a WAV file on disk that is a candidate for recognition.
type AudioSource struct {
	Path string
	Size int64
}

// RecognitionAttempt is one call to the speech service.
type RecognitionAttempt struct {
	Number          int
	EnergyThreshold float64
}
