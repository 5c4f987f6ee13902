package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/panbanda/mrsummary/internal/progress"
	"github.com/panbanda/mrsummary/internal/vcs"
	"github.com/panbanda/mrsummary/pkg/analyzer/summary"
	"github.com/panbanda/mrsummary/pkg/config"
	"github.com/panbanda/mrsummary/pkg/gitlog"
	"github.com/panbanda/mrsummary/pkg/models"
)

// Service orchestrates merge request analysis: it reads a commit range
// through the git client, parses it, and feeds the records to the summary
// generator. It holds no per-repository state; every call names its own
// repository path and refs.
type Service struct {
	config    *config.Config
	client    *vcs.Client
	parser    *gitlog.Parser
	generator *summary.Generator
	logger    *zap.Logger
	spinner   bool
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithClient sets the git client (for testing).
func WithClient(c *vcs.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithLogger sets the logger passed to every layer.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSpinner shows a spinner on stderr while git runs.
func WithSpinner(enabled bool) Option {
	return func(s *Service) {
		s.spinner = enabled
	}
}

// New creates a new analysis service. The git client and summary generator
// are built from the configuration unless supplied.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg := s.config
	if s.client == nil {
		s.client = NewClient(cfg, s.logger)
	}
	s.parser = gitlog.NewParser(gitlog.WithLogger(s.logger))
	s.generator = summary.New(
		summary.WithKeyChangeLines(cfg.Summary.KeyChangeLines),
		summary.WithSignificantChangeLines(cfg.Summary.SignificantChangeLines),
		summary.WithMaxKeyChanges(cfg.Summary.MaxKeyChanges),
		summary.WithMaxFilesPerCategory(cfg.Summary.MaxFilesPerCategory),
		summary.WithOtherFilenames(cfg.Summary.OtherFilenames...),
		summary.WithLogger(s.logger),
	)
	return s
}

// NewClient builds a git client from the git section of cfg.
func NewClient(cfg *config.Config, logger *zap.Logger) *vcs.Client {
	return vcs.NewClient(
		vcs.WithRunner(vcs.NewExecRunner(cfg.Git.Binary)),
		vcs.WithTimeout(cfg.Git.Timeout()),
		vcs.WithValidateTimeout(cfg.Git.ValidateTimeout()),
		vcs.WithEmptyExitCodes(cfg.Git.EmptyExitCodes...),
		vcs.WithRefValidation(cfg.Git.ValidateRefs),
		vcs.WithLogger(logger),
	)
}

// Generator returns the summary generator built from the configuration.
func (s *Service) Generator() *summary.Generator {
	return s.generator
}

// Request names a repository and a commit range. Empty refs fall back to
// the configured refs; an empty base is then auto-detected.
type Request struct {
	RepoPath string
	Base     string
	Target   string
}

// Range is the parsed content of a resolved commit range.
type Range struct {
	Request vcs.LogRequest
	Records []models.CommitRecord
}

// Empty reports whether the range holds no commits.
func (r *Range) Empty() bool {
	return len(r.Records) == 0
}

// Commits reads and parses the commits in the requested range. An empty
// range is not an error.
func (s *Service) Commits(ctx context.Context, req Request) (*Range, error) {
	logReq := vcs.LogRequest{
		RepoPath: req.RepoPath,
		Base:     req.Base,
		Target:   req.Target,
	}
	if logReq.Base == "" {
		logReq.Base = s.config.Refs.Base
	}
	if logReq.Target == "" {
		logReq.Target = s.config.Refs.Target
	}

	var tracker *progress.Tracker
	if s.spinner {
		tracker = progress.NewSpinner("Reading git history")
	}

	res := s.client.Log(ctx, logReq)
	tracker.Finish()
	switch res.Kind {
	case vcs.ResultFailure:
		return nil, res.Err
	case vcs.ResultEmpty:
		s.logger.Debug("no commits in range", zap.String("range", res.Request.Range()))
		return &Range{Request: res.Request, Records: []models.CommitRecord{}}, nil
	}

	records := s.parser.Parse(res.Output)
	s.logger.Debug("parsed commit range",
		zap.String("range", res.Request.Range()),
		zap.Int("commits", len(records)))
	return &Range{Request: res.Request, Records: records}, nil
}

// SummaryResult is a merge request summary for a commit range.
type SummaryResult struct {
	Range  *Range
	Report *models.SummaryReport
}

// Summary generates the merge request summary. An empty range yields the
// "No changes detected" report.
func (s *Service) Summary(ctx context.Context, req Request) (*SummaryResult, error) {
	rng, err := s.Commits(ctx, req)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{Range: rng, Report: s.generator.Generate(rng.Records)}, nil
}

// AnalysisResult is the categorized commit report for a commit range.
type AnalysisResult struct {
	Range    *Range
	Analysis *models.CommitAnalysis
	Markdown string
}

// Analyze categorizes the commits in the range.
func (s *Service) Analyze(ctx context.Context, req Request) (*AnalysisResult, error) {
	rng, err := s.Commits(ctx, req)
	if err != nil {
		return nil, err
	}
	a := s.generator.Analyze(rng.Records)
	if a.Skipped > 0 {
		s.logger.Warn("commits skipped during analysis", zap.Int("skipped", a.Skipped))
	}
	return &AnalysisResult{Range: rng, Analysis: a, Markdown: s.generator.AnalysisMarkdown(a)}, nil
}

// HistoryResult is the per-commit history of a range.
type HistoryResult struct {
	Range   *Range
	Entries []models.HistoryEntry
}

// History lists the commits in the range.
func (s *Service) History(ctx context.Context, req Request) (*HistoryResult, error) {
	rng, err := s.Commits(ctx, req)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Range: rng, Entries: models.NewHistory(rng.Records)}, nil
}

// FilesResult is the set of files touched in a range, grouped by category.
type FilesResult struct {
	Range  *Range
	Groups models.FileGroups
}

// Files groups the files changed in the range.
func (s *Service) Files(ctx context.Context, req Request) (*FilesResult, error) {
	rng, err := s.Commits(ctx, req)
	if err != nil {
		return nil, err
	}
	return &FilesResult{Range: rng, Groups: s.generator.GroupFiles(summary.UniqueFiles(rng.Records))}, nil
}

// Status reports the working tree state of the repository at path.
func (s *Service) Status(path string) (*models.RepoStatus, error) {
	return s.client.Status(path)
}

// Branches lists the branches of the repository at path.
func (s *Service) Branches(path string) (*models.BranchList, error) {
	return s.client.Branches(path)
}
