package application

import (
	"context"
	"errors"
)

// Generator asks a generative-language service for a reply to prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFactory builds a Generator for the resolved credential.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

var (
	ErrMissingAPIKey = errors.New("api key environment variable not set")
	ErrNotConfigured = errors.New("generator not configured")
	ErrEmptyText     = errors.New("empty text provided")
)
