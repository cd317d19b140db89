// Package main provides the billingflatfile CLI entrypoint.
//
// `run` is the only command that writes files. `inspect`, `history` and
// `version` are read-only.
//
// Usage:
//
//	billingflatfile <command> [options]
//
// Exit codes for `run`:
//   - 0: success
//   - 1: usage or unexpected error
//   - 10-40: input, layout and conversion errors
//   - 130: interrupted
//   - 210-229: argument, run id, output conflict and side-effect errors
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/billingflatfile/cli/cmd"
	"github.com/justapithecus/billingflatfile/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "billingflatfile",
		Usage:          "Generate fixed-width billing files from delimited extracts",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.InspectCommand(),
			cmd.HistoryCommand(),
			cmd.VersionCommand(commit),
		},
	}

	// SIGINT/SIGTERM cancel the batch between files; the run command maps
	// the cancellation to exit status 130.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	code, msg := exitStatus(err)
	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(code)
}

// exitStatus returns the process exit code for err and the message to
// print, if any.
func exitStatus(err error) (int, string) {
	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg == fmt.Sprintf("exit status %d", code) {
			msg = ""
		}
		return code, msg
	}

	// Unexpected error
	return 1, fmt.Sprintf("Error: %v", err)
}
