package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// ExecRunner runs external tools with os/exec
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the process is killed
	WaitDelay time.Duration
}

// NewExecRunner creates a runner backed by real processes
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 5 * time.Second}
}

// Run executes binary with args and captures stdout and stderr separately
func (r *ExecRunner) Run(ctx context.Context, binary string, args ...string) (*domain.CommandResult, error) {
	// exec.CommandContext passes args directly to the process, no shell quoting needed
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.WaitDelay = r.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", binary, domain.ErrCommandTimeout)
		}
		return nil, fmt.Errorf("%s: %w", binary, ctxErr)
	}

	result := &domain.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("failed to run %s: %w", binary, err)
	}

	return result, nil
}
