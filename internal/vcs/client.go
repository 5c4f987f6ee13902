package vcs

import (
	"context"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	// ErrTimeout marks a git command that did not finish in time.
	ErrTimeout = errors.New("git operation timed out")
	// ErrGitNotFound marks a missing git executable.
	ErrGitNotFound = errors.New("git executable not found")
	// ErrNotRepository marks a path that is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")
	// ErrRefNotFound marks a branch or revision that does not resolve.
	ErrRefNotFound = errors.New("ref not found")
	// ErrCommandFailed marks a git command that exited with an error.
	ErrCommandFailed = errors.New("git command failed")
)

// Defaults for Client settings.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultValidateTimeout = 10 * time.Second
	DefaultTarget          = "HEAD"
)

// DefaultEmptyExitCodes are exit codes of git log that mean "no commits".
var DefaultEmptyExitCodes = []int{128}

// LogFormat is the per-commit format the gitlog parser expects.
const LogFormat = "--format=format:%H%n%an%n%ad%n%s%n"

var fullHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// defaultBranchCandidates are tried in order when no base ref is given.
var defaultBranchCandidates = []string{"main", "master", "origin/main", "origin/master"}

// ResultKind tags the outcome of a log acquisition.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultEmpty
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultEmpty:
		return "empty"
	default:
		return "failure"
	}
}

// LogRequest names the commit range to read.
type LogRequest struct {
	RepoPath string
	Base     string
	Target   string
}

// Range renders the request as base..target.
func (r LogRequest) Range() string {
	return r.Base + ".." + r.Target
}

// LogResult is the tagged outcome of Client.Log. Output is set for
// ResultSuccess and Err for ResultFailure.
type LogResult struct {
	Kind    ResultKind
	Request LogRequest
	Output  string
	Err     error
}

func success(req LogRequest, out string) LogResult {
	return LogResult{Kind: ResultSuccess, Request: req, Output: out}
}

func empty(req LogRequest) LogResult {
	return LogResult{Kind: ResultEmpty, Request: req}
}

func failure(req LogRequest, err error) LogResult {
	return LogResult{Kind: ResultFailure, Request: req, Err: err}
}

// Client runs git for one process. It keeps no per-repository state, so a
// single Client serves concurrent requests against different paths.
type Client struct {
	runner          Runner
	opener          Opener
	timeout         time.Duration
	validateTimeout time.Duration
	emptyExitCodes  map[int]struct{}
	validateRefs    bool
	logger          *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRunner sets the git command runner.
func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithOpener sets the repository opener.
func WithOpener(o Opener) Option {
	return func(c *Client) { c.opener = o }
}

// WithTimeout sets the deadline for git log.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithValidateTimeout sets the deadline for each ref check.
func WithValidateTimeout(d time.Duration) Option {
	return func(c *Client) { c.validateTimeout = d }
}

// WithEmptyExitCodes sets the git log exit codes treated as an empty range.
func WithEmptyExitCodes(codes ...int) Option {
	return func(c *Client) {
		c.emptyExitCodes = make(map[int]struct{}, len(codes))
		for _, code := range codes {
			c.emptyExitCodes[code] = struct{}{}
		}
	}
}

// WithRefValidation toggles checking refs before running git log.
func WithRefValidation(enabled bool) Option {
	return func(c *Client) { c.validateRefs = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client that runs the git binary found on PATH.
func NewClient(opts ...Option) *Client {
	c := &Client{
		runner:          NewExecRunner(DefaultBinary),
		opener:          NewGitOpener(),
		timeout:         DefaultTimeout,
		validateTimeout: DefaultValidateTimeout,
		validateRefs:    true,
		logger:          zap.NewNop(),
	}
	WithEmptyExitCodes(DefaultEmptyExitCodes...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Log reads `git log --stat` for the requested range. An empty Base is
// replaced by the detected default branch and an empty Target by HEAD.
func (c *Client) Log(ctx context.Context, req LogRequest) LogResult {
	if req.RepoPath == "" {
		req.RepoPath = "."
	}
	if req.Target == "" {
		req.Target = DefaultTarget
	}

	if err := c.ValidateRepo(req.RepoPath); err != nil {
		return failure(req, err)
	}
	if req.Base == "" {
		base, err := c.DetectDefaultBranch(ctx, req.RepoPath)
		if err != nil {
			return failure(req, err)
		}
		req.Base = base
	}
	if c.validateRefs {
		if err := c.ValidateRefs(ctx, req.RepoPath, req.Base, req.Target); err != nil {
			return failure(req, err)
		}
	}

	args := []string{
		"--no-pager", "-C", req.RepoPath, "log", req.Range(),
		"--stat", LogFormat, "--date=short", "--no-color", "--no-renames",
	}
	c.logger.Debug("running git log", zap.String("repo", req.RepoPath), zap.String("range", req.Range()))

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	res, err := c.runner.Run(runCtx, args...)
	if err != nil {
		return failure(req, c.runError(err, c.timeout))
	}
	c.logger.Debug("git log finished",
		zap.Int("exit_code", res.ExitCode),
		zap.Int("bytes", len(res.Stdout)),
		zap.Duration("elapsed", time.Since(start)))

	if res.ExitCode != 0 {
		if _, ok := c.emptyExitCodes[res.ExitCode]; ok {
			return empty(req)
		}
		return failure(req, commandFailed("git log", res))
	}

	out := string(res.Stdout)
	if strings.TrimSpace(out) == "" {
		return empty(req)
	}
	return success(req, out)
}

// ValidateRepo checks that path exists and lies inside a git repository.
func (c *Client) ValidateRepo(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "repository path %s", path)
	}
	if !info.IsDir() {
		return errors.Newf("repository path %s is not a directory", path)
	}
	_, err = c.open(path)
	return err
}

// ValidateRefs verifies that every ref resolves to a commit. Full commit
// hashes are accepted without a lookup.
func (c *Client) ValidateRefs(ctx context.Context, repoPath string, refs ...string) error {
	var missing []string
	for _, ref := range refs {
		if fullHashPattern.MatchString(ref) {
			continue
		}
		ok, err := c.refExists(ctx, repoPath, ref)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, ref)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	msg := "branch not found: " + strings.Join(missing, ", ")
	if branches, err := c.localBranches(repoPath); err == nil && len(branches) > 0 {
		msg += ". Available branches: " + strings.Join(branches, ", ")
	}
	return errors.Mark(errors.New(msg), ErrRefNotFound)
}

// DetectDefaultBranch returns the first of main, master, origin/main, and
// origin/master that exists.
func (c *Client) DetectDefaultBranch(ctx context.Context, repoPath string) (string, error) {
	for _, candidate := range defaultBranchCandidates {
		ok, err := c.refExists(ctx, repoPath, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			c.logger.Debug("detected default branch", zap.String("branch", candidate))
			return candidate, nil
		}
	}
	return "", errors.WithHint(
		errors.Mark(errors.New("could not detect default branch (main/master)"), ErrRefNotFound),
		"pass the base branch explicitly with --base")
}

func (c *Client) refExists(ctx context.Context, repoPath, ref string) (bool, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.validateTimeout)
	defer cancel()

	res, err := c.runner.Run(runCtx, "-C", repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return false, c.runError(err, c.validateTimeout)
	}
	return res.ExitCode == 0, nil
}

// runError classifies an error from Runner.Run.
func (c *Client) runError(err error, limit time.Duration) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Mark(errors.Newf(
			"git operation timed out after %s; check that the repository is accessible and the refs exist", limit),
			ErrTimeout)
	case errors.Is(err, context.Canceled):
		return errors.Wrap(err, "git operation canceled")
	default:
		return err
	}
}

func commandFailed(what string, res RunResult) error {
	detail := strings.TrimSpace(string(res.Stderr))
	if detail == "" {
		detail = "no error output"
	}
	return errors.Mark(errors.Newf("%s exited with code %d: %s", what, res.ExitCode, detail), ErrCommandFailed)
}
