// Package vcs acquires git log output and repository metadata.
package vcs

import (
	"context"

	"github.com/go-git/go-git/v5"
)

// RunResult is the captured outcome of a finished git process.
type RunResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes git commands. A non-zero exit is reported through
// RunResult.ExitCode, not as an error; errors mean the process could not
// run to completion (missing binary, timeout, cancellation).
type Runner interface {
	Run(ctx context.Context, args ...string) (RunResult, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (*git.Repository, error)
}
