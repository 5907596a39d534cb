// Package main provides the entry point for the crxlint CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	_ = logging.Close()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// exitError ends the process with code after the command has already
// reported the outcome.
type exitError struct {
	code   int
	reason string
}

func (e *exitError) Error() string { return e.reason }

var errValidationFailed = &exitError{code: 1, reason: "validation failed"}
