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
	"speech-relay/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run prints only the reply or its diagnostic on stdout and returns 0 for
// every outcome; usage errors return 2.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("respond", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose bool
	fs.BoolVar(&verbose, "v", false, "log diagnostics for each step")
	fs.BoolVar(&verbose, "verbose", false, "log diagnostics for each step")
	configPath := fs.String("config", "config.yaml", "path to config file")
	text := fs.String("text", "", "reply to this text instead of a transcript file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: respond [-v] [-config file] [-text text | transcript_path]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	cfg, logger, err := bootstrap.Load(*configPath, verbose, stderr)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", err)
		return 0
	}

	responder := bootstrap.NewResponder(cfg, logger)

	var reply domain.Reply
	if *text != "" {
		reply = responder.ProcessText(ctx, *text)
	} else {
		reply = responder.ProcessTranscriptFile(ctx, fs.Arg(0))
	}

	logger.Debug("reply finished", "outcome", reply.Outcome)
	fmt.Fprintln(stdout, reply.Text)
	return 0
}
