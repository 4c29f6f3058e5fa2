package domain

import "fmt"

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeContentMiss
	OutcomeServiceError
	OutcomeInvalidInput
	OutcomeConfigError
	OutcomeTimeout
	OutcomeInterrupted
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeContentMiss:
		return "content_miss"
	case OutcomeServiceError:
		return "service_error"
	case OutcomeInvalidInput:
		return "invalid_input"
	case OutcomeConfigError:
		return "config_error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "failure"
	}
}

// Printed messages. Downstream consumers match on these, keep them stable.
const (
	MsgUnintelligible     = "Could not understand audio"
	MsgInvalidAudio       = "Could not process audio file - file appears invalid"
	MsgEmptyTranscript    = "No transcription found or empty transcription"
	MsgConfigureFailed    = "Failed to configure Gemini API"
	MsgInterrupted        = "Request was interrupted. Please try again."
	MsgTimeout            = "Operation timed out"
	msgServiceError       = "Error with the speech recognition service; %s"
	msgProcessingError    = "Error processing audio file: %s"
	msgTranscriptNotFound = "Transcription file not found: %s"
	msgReplyError         = "Error: %s"
)

// TranscriptResult is the tagged outcome of a transcription. Text always holds
// the printable form: the transcript itself or a diagnostic.
type TranscriptResult struct {
	Outcome Outcome
	Text    string
	Err     error
}

func (r TranscriptResult) OK() bool { return r.Outcome == OutcomeOK }

func (r TranscriptResult) String() string { return r.Text }

func Transcribed(text string) TranscriptResult {
	return TranscriptResult{Outcome: OutcomeOK, Text: text}
}

func Unintelligible() TranscriptResult {
	return TranscriptResult{Outcome: OutcomeContentMiss, Text: MsgUnintelligible}
}

func InvalidAudio(err error) TranscriptResult {
	return TranscriptResult{Outcome: OutcomeInvalidInput, Text: MsgInvalidAudio, Err: err}
}

func RecognitionServiceFailed(err error) TranscriptResult {
	return TranscriptResult{
		Outcome: OutcomeServiceError,
		Text:    fmt.Sprintf(msgServiceError, detail(err)),
		Err:     err,
	}
}

func AudioProcessingFailed(err error) TranscriptResult {
	return TranscriptResult{
		Outcome: OutcomeFailure,
		Text:    fmt.Sprintf(msgProcessingError, detail(err)),
		Err:     err,
	}
}

// Reply is the tagged outcome of the responder stage.
type Reply struct {
	Outcome Outcome
	Text    string
	Err     error
}

func (r Reply) OK() bool { return r.Outcome == OutcomeOK }

func (r Reply) String() string { return r.Text }

func Replied(text string) Reply {
	return Reply{Outcome: OutcomeOK, Text: text}
}

func TranscriptNotFound(path string) Reply {
	return Reply{Outcome: OutcomeInvalidInput, Text: fmt.Sprintf(msgTranscriptNotFound, path)}
}

func EmptyTranscript() Reply {
	return Reply{Outcome: OutcomeInvalidInput, Text: MsgEmptyTranscript}
}

func ConfigureFailed(err error) Reply {
	return Reply{Outcome: OutcomeConfigError, Text: MsgConfigureFailed, Err: err}
}

func Interrupted(err error) Reply {
	return Reply{Outcome: OutcomeInterrupted, Text: MsgInterrupted, Err: err}
}

func TimedOut(err error) Reply {
	return Reply{Outcome: OutcomeTimeout, Text: MsgTimeout, Err: err}
}

func ReplyFailed(err error) Reply {
	return Reply{Outcome: OutcomeFailure, Text: fmt.Sprintf(msgReplyError, detail(err)), Err: err}
}

func detail(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
