package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speech-relay/internal/application"
	"speech-relay/internal/domain"
)

type recordingNotifier struct {
	messages []string
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return r.err
}

func newPipeline(t *testing.T, rec application.Recognizer, gen *stubGenerator, notifier application.Notifier) (*application.Pipeline, *responderFixture) {
	t.Helper()

	f := newResponderFixture(t, gen, time.Second)
	pipeline := application.NewPipeline(
		newTranscriber(rec),
		f.responder,
		notifier,
		f.cfg.TranscriptPath,
		discardLogger(),
	)
	return pipeline, f
}

func TestPipeline_TranscribesAndReplies(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	rec := &stubRecognizer{responses: []stubResponse{{text: "what is the speed limit here"}}}
	gen := &stubGenerator{reply: "Fifty kilometers per hour"}
	notifier := &recordingNotifier{}

	pipeline, f := newPipeline(t, rec, gen, notifier)
	result := pipeline.Run(context.Background(), writeSpeechWAV(t))

	if !result.Transcript.OK() || !result.Responded || !result.Reply.OK() {
		t.Fatalf("result: %+v", result)
	}

	transcript, err := os.ReadFile(f.cfg.TranscriptPath)
	if err != nil {
		t.Fatalf("reading transcript file: %v", err)
	}
	if string(transcript) != "what is the speed limit here" {
		t.Errorf("transcript file: got %q", string(transcript))
	}

	reply, err := os.ReadFile(f.cfg.ReplyPath)
	if err != nil {
		t.Fatalf("reading reply file: %v", err)
	}
	if string(reply) != "Fifty kilometers per hour" {
		t.Errorf("reply file: got %q", string(reply))
	}

	if len(notifier.messages) != 1 || notifier.messages[0] != "Fifty kilometers per hour" {
		t.Errorf("notifications: got %v", notifier.messages)
	}
}

func TestPipeline_SkipsReplyWithoutTranscript(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	rec := &stubRecognizer{responses: []stubResponse{
		{err: application.ErrUnintelligible},
		{err: application.ErrUnintelligible},
	}}
	gen := &stubGenerator{reply: "unused"}
	notifier := &recordingNotifier{}

	pipeline, f := newPipeline(t, rec, gen, notifier)
	result := pipeline.Run(context.Background(), writeSpeechWAV(t))

	if result.Responded {
		t.Error("responder should not run on a content miss")
	}
	if result.Transcript.Outcome != domain.OutcomeContentMiss {
		t.Errorf("transcript outcome: got %s", result.Transcript.Outcome)
	}
	if gen.calls() != 0 {
		t.Errorf("generator calls: got %d, want 0", gen.calls())
	}

	transcript, err := os.ReadFile(f.cfg.TranscriptPath)
	if err != nil {
		t.Fatalf("reading transcript file: %v", err)
	}
	if string(transcript) != domain.MsgUnintelligible {
		t.Errorf("transcript file: got %q", string(transcript))
	}
	if len(notifier.messages) != 0 {
		t.Errorf("notifications: got %v", notifier.messages)
	}
}

func TestPipeline_NotifierErrorDoesNotFailRun(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	rec := &stubRecognizer{responses: []stubResponse{{text: "hello"}}}
	notifier := &recordingNotifier{err: errors.New("pushover down")}

	pipeline, _ := newPipeline(t, rec, &stubGenerator{reply: "hi"}, notifier)
	result := pipeline.Run(context.Background(), writeSpeechWAV(t))

	if !result.Reply.OK() {
		t.Errorf("reply outcome: got %s", result.Reply.Outcome)
	}
}

func TestPipeline_InvalidAudio(t *testing.T) {
	rec := &stubRecognizer{}
	pipeline, _ := newPipeline(t, rec, &stubGenerator{}, &application.NoopNotifier{})

	result := pipeline.Run(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))

	if result.Transcript.Text != domain.MsgInvalidAudio {
		t.Errorf("transcript: got %q", result.Transcript.Text)
	}
	if len(rec.attempts) != 0 {
		t.Errorf("recognizer calls: got %d", len(rec.attempts))
	}
}
