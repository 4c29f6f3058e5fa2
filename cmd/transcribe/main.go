package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"speech-relay/internal/bootstrap"
	"speech-relay/internal/infra/textfile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run prints only the transcript or its diagnostic on stdout and returns 0
// for every outcome; usage errors return 2.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose bool
	fs.BoolVar(&verbose, "v", false, "log diagnostics for each step")
	fs.BoolVar(&verbose, "verbose", false, "log diagnostics for each step")
	configPath := fs.String("config", "config.yaml", "path to config file")
	outPath := fs.String("o", "", "also write the transcript to this file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: transcribe [-v] [-config file] [-o file] audio_file")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	audioPath := fs.Arg(0)

	cfg, logger, err := bootstrap.Load(*configPath, verbose, stderr)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", err)
		return 0
	}

	transcriber := bootstrap.NewTranscriber(cfg, logger)

	logger.Debug("transcribing", "path", audioPath, "provider", cfg.Speech.Provider)
	result := transcriber.Transcribe(ctx, audioPath)
	logger.Debug("transcription finished", "outcome", result.Outcome)

	if *outPath != "" {
		if err := textfile.Write(*outPath, result.Text); err != nil {
			logger.Error("saving transcript", "path", *outPath, "error", err)
		}
	}

	fmt.Fprintln(stdout, result.Text)
	return 0
}
