package application

import (
	"context"
	"errors"
	"fmt"

	"speech-relay/internal/domain"
)

// ErrUnintelligible is a content-level miss: the service answered but could
// not map the audio to text.
var ErrUnintelligible = errors.New("speech could not be understood")

// ServiceError is a transport or backend failure of the recognition service.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("recognition request failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Recognizer submits a WAV buffer to a speech service.
type Recognizer interface {
	Recognize(ctx context.Context, wav []byte, attempt domain.RecognitionAttempt) (string, error)
}
