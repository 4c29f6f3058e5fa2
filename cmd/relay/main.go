package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"speech-relay/config"
	"speech-relay/internal/application"
	"speech-relay/internal/bootstrap"
	"speech-relay/internal/infra/audio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type relayFunc func(ctx context.Context, audioPath string)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose bool
	fs.BoolVar(&verbose, "v", false, "log diagnostics for each step")
	fs.BoolVar(&verbose, "verbose", false, "log diagnostics for each step")
	configPath := fs.String("config", "config.yaml", "path to config file")
	watchDir := fs.String("watch", "", "process every WAV file dropped into this directory")
	record := fs.Bool("record", false, "record utterances from the default microphone")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: relay [-v] [-config file] (audio_file | -watch dir | -record)")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if !*record && *watchDir == "" && fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, logger, err := bootstrap.Load(*configPath, verbose, stderr)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", err)
		return 0
	}

	relay := func(ctx context.Context, audioPath string) {
		runOnce(ctx, audioPath, cfg, logger, stdout)
	}

	switch {
	case *record:
		err = recordLoop(ctx, cfg, relay, logger)
	case *watchDir != "":
		inbox := audio.NewInbox(*watchDir, cfg.Inbox.PollInterval)
		if err = inbox.Start(ctx); err == nil {
			logger.Info("watching for audio", "dir", *watchDir, "interval", cfg.Inbox.PollInterval)
			err = watchLoop(ctx, inbox, relay, logger)
		}
	default:
		relay(ctx, fs.Arg(0))
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("relay stopped", "error", err)
		return 1
	}
	return 0
}

// runOnce relays one audio file. Every record it logs carries a fresh run_id.
func runOnce(ctx context.Context, audioPath string, cfg *config.Config, logger *slog.Logger, stdout io.Writer) {
	logger = logger.With("run_id", uuid.NewString())

	pipeline := application.NewPipeline(
		bootstrap.NewTranscriber(cfg, logger),
		bootstrap.NewResponder(cfg, logger),
		bootstrap.NewNotifier(cfg.Pushover),
		cfg.Output.TranscriptFile,
		logger,
	)

	result := pipeline.Run(ctx, audioPath)
	logger.Debug("run finished",
		"transcript_outcome", result.Transcript.Outcome,
		"reply_outcome", result.Reply.Outcome,
	)

	fmt.Fprintln(stdout, result.Transcript.Text)
	if result.Responded {
		fmt.Fprintln(stdout, result.Reply.Text)
	}
}

// watchLoop relays inbox files until ctx ends. A file whose run was
// interrupted is left in place so the next start picks it up again.
func watchLoop(ctx context.Context, inbox *audio.Inbox, relay relayFunc, logger *slog.Logger) error {
	for {
		path, err := inbox.Next(ctx)
		if err != nil {
			return err
		}

		relay(ctx, path)

		if ctx.Err() != nil {
			logger.Info("interrupted, leaving file for the next run", "path", path)
			return ctx.Err()
		}
		if err := inbox.Done(path); err != nil {
			logger.Warn("marking file processed", "error", err)
		}
	}
}

func recordLoop(ctx context.Context, cfg *config.Config, relay relayFunc, logger *slog.Logger) error {
	mic := audio.NewMicrophoneSource(
		cfg.Microphone.SampleRate,
		cfg.Microphone.MaxSeconds,
		cfg.Speech.InitialThreshold,
		logger,
	)
	if err := mic.Start(ctx); err != nil {
		return err
	}
	defer mic.Stop()

	logger.Info("listening", "output", cfg.Microphone.OutputFile)

	for {
		wav, err := mic.Record(ctx)
		if err != nil {
			return err
		}

		if err := os.WriteFile(cfg.Microphone.OutputFile, wav, 0644); err != nil {
			return fmt.Errorf("saving recording: %w", err)
		}

		relay(ctx, cfg.Microphone.OutputFile)
	}
}
