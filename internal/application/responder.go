package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"speech-relay/internal/domain"
	"speech-relay/internal/infra/textfile"
	"speech-relay/internal/watchdog"
)

type ResponderConfig struct {
	APIKeyEnv      string
	TranscriptPath string
	ReplyPath      string
	TempInputPath  string
	Timeout        time.Duration
}

func DefaultResponderConfig() ResponderConfig {
	return ResponderConfig{
		APIKeyEnv:      "GEMINI_API_KEY",
		TranscriptPath: domain.DefaultTranscriptPath,
		ReplyPath:      domain.DefaultReplyPath,
		TempInputPath:  domain.DefaultTempInputPath,
		Timeout:        30 * time.Second,
	}
}

// Responder turns a transcript into a short generated reply and persists it.
// Every entry point is bounded by cfg.Timeout.
type Responder struct {
	newGenerator GeneratorFactory
	cfg          ResponderConfig
	logger       *slog.Logger

	// Set by Configure for direct GenerateReply use. The file and text
	// entry points build their own generator per call and never touch it.
	mu        sync.Mutex
	generator Generator
}

func NewResponder(newGenerator GeneratorFactory, cfg ResponderConfig, logger *slog.Logger) *Responder {
	return &Responder{
		newGenerator: newGenerator,
		cfg:          cfg,
		logger:       logger,
	}
}

// Configure resolves the API key from the environment and builds the
// generator used by GenerateReply.
func (r *Responder) Configure(ctx context.Context) error {
	gen, err := r.configure(ctx)

	r.mu.Lock()
	r.generator = gen
	r.mu.Unlock()

	return err
}

func (r *Responder) configure(ctx context.Context) (Generator, error) {
	apiKey, ok := os.LookupEnv(r.cfg.APIKeyEnv)
	if !ok || strings.TrimSpace(apiKey) == "" {
		err := fmt.Errorf("%w: %s (set it with: export %s='your_api_key_here')",
			ErrMissingAPIKey, r.cfg.APIKeyEnv, r.cfg.APIKeyEnv)
		r.logger.Error("configuring generator", "error", err)
		return nil, err
	}

	gen, err := r.newGenerator(ctx, apiKey)
	if err != nil {
		err = fmt.Errorf("initializing generator: %w", err)
		r.logger.Error("configuring generator", "error", err)
		return nil, err
	}

	return gen, nil
}

// GenerateReply asks the generator built by the last Configure. Failures
// come back as diagnostic replies.
func (r *Responder) GenerateReply(ctx context.Context, prompt string) domain.Reply {
	r.mu.Lock()
	gen := r.generator
	r.mu.Unlock()

	if gen == nil {
		return domain.ReplyFailed(ErrNotConfigured)
	}
	return r.generateWith(ctx, gen, prompt)
}

func (r *Responder) generateWith(ctx context.Context, gen Generator, prompt string) domain.Reply {
	full := prompt + " " + domain.SteeringSuffix

	text, err := watchdog.Await(ctx, func(ctx context.Context) (string, error) {
		return gen.Generate(ctx, full)
	})
	if err != nil {
		return r.replyError(err)
	}

	return domain.Replied(text)
}

// ProcessTranscriptFile reads a transcript, generates a reply and writes it
// to the reply file. An empty path means the default transcript location.
func (r *Responder) ProcessTranscriptFile(ctx context.Context, path string) domain.Reply {
	if path == "" {
		path = r.cfg.TranscriptPath
	}

	return r.guard(ctx, func(ctx context.Context, gate *saveGate) domain.Reply {
		transcript, err := textfile.ReadTrimmed(path)
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Error("transcription file not found", "path", path)
			return domain.TranscriptNotFound(path)
		}
		if err != nil {
			r.logger.Error("reading transcription", "path", path, "error", err)
			return domain.ReplyFailed(err)
		}

		return r.respond(ctx, gate, transcript)
	})
}

// Respond handles a transcript already held in memory, with the same
// validation, deadline and persistence as ProcessTranscriptFile.
func (r *Responder) Respond(ctx context.Context, transcript string) domain.Reply {
	return r.guard(ctx, func(ctx context.Context, gate *saveGate) domain.Reply {
		return r.respond(ctx, gate, strings.TrimSpace(transcript))
	})
}

// ProcessText stages arbitrary text in the temp input file and processes
// that file. The temp file is removed afterwards.
func (r *Responder) ProcessText(ctx context.Context, text string) domain.Reply {
	if strings.TrimSpace(text) == "" {
		r.logger.Error("empty text provided for processing")
		return domain.ReplyFailed(ErrEmptyText)
	}

	if err := textfile.Write(r.cfg.TempInputPath, text); err != nil {
		r.logger.Error("writing temp input", "error", err)
		return domain.ReplyFailed(err)
	}
	defer os.Remove(r.cfg.TempInputPath)

	return r.ProcessTranscriptFile(ctx, r.cfg.TempInputPath)
}

// saveGate makes the reply write and the deadline mutually exclusive: the
// reply file is written only when the caller will be handed that reply.
type saveGate struct {
	mu    sync.Mutex
	saved bool
	reply domain.Reply
}

func (r *Responder) respond(ctx context.Context, gate *saveGate, transcript string) domain.Reply {
	if transcript == "" {
		return domain.EmptyTranscript()
	}

	r.logger.Debug("processing transcription", "text", transcript)

	gen, err := r.configure(ctx)
	if err != nil {
		return domain.ConfigureFailed(err)
	}
	if closer, ok := gen.(io.Closer); ok {
		defer closer.Close()
	}

	return r.save(ctx, gate, r.generateWith(ctx, gen, transcript))
}

func (r *Responder) save(ctx context.Context, gate *saveGate, reply domain.Reply) domain.Reply {
	gate.mu.Lock()
	defer gate.mu.Unlock()

	// The guard has already answered the caller.
	if ctx.Err() != nil {
		return reply
	}

	if err := textfile.Write(r.cfg.ReplyPath, reply.Text); err != nil {
		r.logger.Error("saving reply", "path", r.cfg.ReplyPath, "error", err)
		return domain.ReplyFailed(err)
	}

	gate.saved = true
	gate.reply = reply
	r.logger.Debug("saved reply", "path", r.cfg.ReplyPath, "outcome", reply.Outcome)
	return reply
}

func (r *Responder) guard(ctx context.Context, fn func(context.Context, *saveGate) domain.Reply) domain.Reply {
	gate := &saveGate{}
	reply, err := watchdog.Run(ctx, r.cfg.Timeout, func(ctx context.Context) (domain.Reply, error) {
		return fn(ctx, gate), nil
	})
	if err == nil {
		return reply
	}

	gate.mu.Lock()
	defer gate.mu.Unlock()
	if gate.saved {
		// saved just before the deadline; the file holds this reply
		return gate.reply
	}
	return r.replyError(err)
}

func (r *Responder) replyError(err error) domain.Reply {
	switch {
	case errors.Is(err, watchdog.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		r.logger.Error("operation timed out", "timeout", r.cfg.Timeout)
		return domain.TimedOut(err)
	case errors.Is(err, context.Canceled):
		r.logger.Warn("request interrupted")
		return domain.Interrupted(err)
	default:
		r.logger.Error("getting reply", "error", err)
		return domain.ReplyFailed(err)
	}
}
