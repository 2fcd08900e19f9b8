package domain

import "context"

// Extractor is an adapter around one external media extraction tool.
// Implementations never return errors or panic: every failure becomes a Failure outcome.
type Extractor interface {
	// Extract downloads media for url into destDir
	Extract(ctx context.Context, url, destDir string) *Outcome

	// Name identifies the wrapped tool in logs
	Name() string
}

// CommandResult is what a finished subprocess reported
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner runs an external binary to completion.
// A non-zero exit is reported through CommandResult, not as an error; errors mean the
// process could not be started, or was killed because ctx expired.
type CommandRunner interface {
	Run(ctx context.Context, binary string, args ...string) (*CommandResult, error)
}
