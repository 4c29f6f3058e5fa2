package application

import (
	"context"
	"log/slog"

	"speech-relay/internal/domain"
	"speech-relay/internal/infra/textfile"
)

// Pipeline runs both stages in one process. The transcript is still written
// to its interchange file, but the responder gets it directly.
type Pipeline struct {
	transcriber    *Transcriber
	responder      *Responder
	notifier       Notifier
	transcriptPath string
	logger         *slog.Logger
}

type PipelineResult struct {
	Transcript domain.TranscriptResult
	Reply      domain.Reply
	Responded  bool
}

func NewPipeline(
	transcriber *Transcriber,
	responder *Responder,
	notifier Notifier,
	transcriptPath string,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		transcriber:    transcriber,
		responder:      responder,
		notifier:       notifier,
		transcriptPath: transcriptPath,
		logger:         logger,
	}
}

func (p *Pipeline) Run(ctx context.Context, audioPath string) PipelineResult {
	transcript := p.transcriber.Transcribe(ctx, audioPath)
	p.logger.Info("transcribed",
		"path", audioPath,
		"outcome", transcript.Outcome,
		"text", transcript.Text,
	)

	if err := textfile.Write(p.transcriptPath, transcript.Text); err != nil {
		p.logger.Error("saving transcript", "path", p.transcriptPath, "error", err)
	}

	result := PipelineResult{Transcript: transcript}
	if !transcript.OK() {
		p.logger.Warn("skipping reply, no usable transcript", "outcome", transcript.Outcome)
		return result
	}

	result.Reply = p.responder.Respond(ctx, transcript.Text)
	result.Responded = true
	p.logger.Info("replied", "outcome", result.Reply.Outcome, "text", result.Reply.Text)

	if result.Reply.OK() {
		if err := p.notifier.Notify(ctx, result.Reply.Text); err != nil {
			p.logger.Error("notifying reply", "error", err)
		}
	}

	return result
}
