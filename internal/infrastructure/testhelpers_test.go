package infrastructure

import (
	"context"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// fakeRunner records invocations and delegates the result to a callback
type fakeRunner struct {
	calls []fakeCall
	run   func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error)
}

type fakeCall struct {
	binary string
	args   []string
}

func (f *fakeRunner) Run(ctx context.Context, binary string, args ...string) (*domain.CommandResult, error) {
	f.calls = append(f.calls, fakeCall{binary: binary, args: args})
	if f.run == nil {
		return &domain.CommandResult{}, nil
	}
	return f.run(ctx, binary, args)
}

// argAfter returns the argument following flag, or "" when flag is absent
func argAfter(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
