// Package main provides the entry point for the astro CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrz1836/astromedia/internal/cli"
	"github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/signal"
)

// Set at build time via ldflags.
//
//nolint:gochecknoglobals // ldflags targets
var (
	version = ""
	commit  = ""
	date    = ""
)

// exitForced is the conventional status for a process ended by SIGINT.
const exitForced = 130

func main() {
	h := signal.NewHandler(context.Background())
	go func() {
		<-h.Forced()
		_, _ = fmt.Fprintln(os.Stderr, "forced exit")
		os.Exit(exitForced)
	}()

	err := cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	h.Stop()

	if err != nil {
		msg, action := errors.Actionable(err)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		if detail := err.Error(); detail != msg {
			_, _ = fmt.Fprintf(os.Stderr, "  %s\n", detail)
		}
		if action != "" {
			_, _ = fmt.Fprintf(os.Stderr, "  %s\n", action)
		}
		os.Exit(cli.ExitCodeForError(err))
	}
}
