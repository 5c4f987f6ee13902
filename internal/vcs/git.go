package vcs

import (
	"bytes"
	"context"
	"io/fs"
	"os/exec"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// ExecRunner runs the git binary as a child process.
type ExecRunner struct {
	Binary string
}

// NewExecRunner creates an ExecRunner for binary, or git when empty.
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecRunner{Binary: binary}
}

// Run executes the binary with args until it exits or ctx ends.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (RunResult, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return res, errors.WithHint(
			errors.Mark(errors.Newf("git executable %q not found", r.Binary), ErrGitNotFound),
			"ensure git is installed and in PATH")
	}
	return res, errors.Wrapf(err, "run %s", r.Binary)
}

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
func (o *GitOpener) PlainOpenWithDetect(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
}
