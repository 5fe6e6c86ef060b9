// Package cli wires configuration, task declarations and the watcher into
// the assetforge command tree.
package cli

import (
	"errors"

	"assetforge/internal/config"
	"assetforge/internal/obs"
	"assetforge/internal/task"
)

// Exit codes. Task failures are distinguished from invocation and
// configuration mistakes so scripts can branch on the result.
const (
	ExitSuccess           = 0
	ExitTaskFailure       = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Main runs the command tree over args (excluding argv[0]) and returns the
// process exit code.
func Main(args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		obs.Error("run failed", map[string]any{"error": err.Error()})
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func exitCodeFor(err error) int {
	var runErr *task.RunError
	switch {
	case errors.Is(err, task.ErrUnknownTask):
		return ExitInvalidInvocation
	case errors.Is(err, config.ErrConfig):
		return ExitConfigError
	case errors.As(err, &runErr):
		return ExitTaskFailure
	default:
		return ExitInternalError
	}
}
