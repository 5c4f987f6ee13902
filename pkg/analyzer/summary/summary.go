// Package summary builds merge request summaries and commit analyses from
// parsed git log records.
package summary

import (
	"fmt"
	"sort"

	"github.com/panbanda/mrsummary/pkg/analyzer/classify"
	"github.com/panbanda/mrsummary/pkg/models"
	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// Defaults for Generator thresholds.
const (
	DefaultKeyChangeLines      = 100
	DefaultMaxKeyChanges       = 5
	DefaultMaxFilesPerCategory = 10
)

// Titles and sentinels that appear verbatim in reports.
const (
	EmptyTitle       = "No changes detected"
	EmptyDescription = "No commits found between the specified branches."
	EmptyReviewTime  = "0 minutes"
)

type commitClassifier interface {
	Classify(rec models.CommitRecord) []models.CommitCategory
}

type fileClassifier interface {
	Classify(path string) models.FileCategory
}

// Generator turns commit records into reports. It holds configuration only
// and is safe for concurrent use.
type Generator struct {
	commits             commitClassifier
	files               fileClassifier
	keyChangeLines      int
	maxKeyChanges       int
	maxFilesPerCategory int
	logger              *zap.Logger
}

// Option configures a Generator.
type Option func(*generatorConfig)

type generatorConfig struct {
	keyChangeLines      int
	significantLines    int
	maxKeyChanges       int
	maxFilesPerCategory int
	otherFilenames      []string
	logger              *zap.Logger
}

// WithKeyChangeLines sets the changed-line count above which a commit is a key change.
func WithKeyChangeLines(n int) Option {
	return func(c *generatorConfig) { c.keyChangeLines = n }
}

// WithSignificantChangeLines sets the fallback threshold for untagged commits.
func WithSignificantChangeLines(n int) Option {
	return func(c *generatorConfig) { c.significantLines = n }
}

// WithMaxKeyChanges limits the key changes listed in the description.
func WithMaxKeyChanges(n int) Option {
	return func(c *generatorConfig) { c.maxKeyChanges = n }
}

// WithMaxFilesPerCategory limits the files listed per category.
func WithMaxFilesPerCategory(n int) Option {
	return func(c *generatorConfig) { c.maxFilesPerCategory = n }
}

// WithOtherFilenames sets the exact paths always filed under Other.
func WithOtherFilenames(names ...string) Option {
	return func(c *generatorConfig) { c.otherFilenames = names }
}

// WithLogger sets the logger for skipped items.
func WithLogger(l *zap.Logger) Option {
	return func(c *generatorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	cfg := generatorConfig{
		keyChangeLines:      DefaultKeyChangeLines,
		significantLines:    classify.DefaultSignificantLines,
		maxKeyChanges:       DefaultMaxKeyChanges,
		maxFilesPerCategory: DefaultMaxFilesPerCategory,
		otherFilenames:      classify.DefaultOtherFilenames,
		logger:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Generator{
		commits:             classify.NewCommitClassifier(cfg.significantLines),
		files:               classify.NewFileClassifier(classify.WithOtherFilenames(cfg.otherFilenames...)),
		keyChangeLines:      cfg.keyChangeLines,
		maxKeyChanges:       cfg.maxKeyChanges,
		maxFilesPerCategory: cfg.maxFilesPerCategory,
		logger:              cfg.logger,
	}
}

// classified pairs a record with its categories. ok is false when
// classification failed and the record must be left out of category lists.
type classified struct {
	record     models.CommitRecord
	categories []models.CommitCategory
	ok         bool
}

// classifyAll tags every record, preserving input order.
func (g *Generator) classifyAll(records []models.CommitRecord) []classified {
	return iter.Map(records, func(rec *models.CommitRecord) classified {
		out := classified{record: *rec}
		var pc panics.Catcher
		pc.Try(func() {
			out.categories = g.commits.Classify(*rec)
		})
		if r := pc.Recovered(); r != nil {
			g.logger.Warn("skipping commit that failed classification",
				zap.String("hash", rec.ShortHash()),
				zap.String("panic", fmt.Sprint(r.Value)))
			return out
		}
		out.ok = true
		return out
	})
}

// GroupFiles files paths by category in category order. Paths that fail
// classification are logged and left out; an unknown category is filed
// under Other.
func (g *Generator) GroupFiles(paths []string) models.FileGroups {
	byCategory := make(map[models.FileCategory][]string)
	for _, p := range paths {
		var cat models.FileCategory
		var pc panics.Catcher
		pc.Try(func() { cat = g.files.Classify(p) })
		if r := pc.Recovered(); r != nil {
			g.logger.Warn("skipping file that failed classification",
				zap.String("path", p),
				zap.String("panic", fmt.Sprint(r.Value)))
			continue
		}
		if !cat.Valid() {
			g.logger.Warn("unknown file category, filing under Other",
				zap.String("path", p),
				zap.String("category", string(cat)))
			cat = models.FileOther
		}
		byCategory[cat] = append(byCategory[cat], p)
	}

	groups := models.FileGroups{}
	for _, cat := range models.FileCategories {
		if files := byCategory[cat]; len(files) > 0 {
			groups = append(groups, models.FileGroup{Category: cat, Files: files})
		}
	}
	return groups
}

// Generate builds the merge request summary for records.
func (g *Generator) Generate(records []models.CommitRecord) *models.SummaryReport {
	if len(records) == 0 {
		return emptyReport()
	}

	report := &models.SummaryReport{
		TotalCommits:    len(records),
		KeyChanges:      []string{},
		BreakingChanges: []string{},
		NewFeatures:     []string{},
		BugFixes:        []string{},
		Refactoring:     []string{},
	}

	for _, c := range g.classifyAll(records) {
		rec := c.record
		report.TotalInsertions += rec.Insertions
		report.TotalDeletions += rec.Deletions
		if !c.ok {
			continue
		}

		entry := fmt.Sprintf("- %s (%s)", rec.Message, rec.ShortHash())
		if primary, ok := classify.Primary(c.categories); ok {
			switch primary {
			case models.CategoryNewFeature:
				report.NewFeatures = append(report.NewFeatures, entry)
			case models.CategoryBugFix:
				report.BugFixes = append(report.BugFixes, entry)
			case models.CategoryRefactoring:
				report.Refactoring = append(report.Refactoring, entry)
			}
		}
		if classify.IsBreaking(rec.Message) {
			report.BreakingChanges = append(report.BreakingChanges, entry)
		}
		if lines := rec.TotalLines(); lines > g.keyChangeLines {
			report.KeyChanges = append(report.KeyChanges, fmt.Sprintf("%s - %d lines changed", entry, lines))
		}
	}

	report.FilesAffected = UniqueFiles(records)
	report.TotalFilesChanged = len(report.FilesAffected)
	report.Title = title(records, report)
	report.EstimatedReviewTime = EstimateReviewTime(
		report.TotalCommits,
		report.TotalFilesChanged,
		report.TotalInsertions+report.TotalDeletions,
	)
	report.Description = g.describe(report)
	return report
}

func emptyReport() *models.SummaryReport {
	return &models.SummaryReport{
		Title:               EmptyTitle,
		Description:         EmptyDescription,
		KeyChanges:          []string{},
		BreakingChanges:     []string{},
		NewFeatures:         []string{},
		BugFixes:            []string{},
		Refactoring:         []string{},
		FilesAffected:       []string{},
		EstimatedReviewTime: EmptyReviewTime,
	}
}

func title(records []models.CommitRecord, r *models.SummaryReport) string {
	switch {
	case len(records) == 1:
		return "feat: " + records[0].Message
	case len(r.NewFeatures) > 0:
		return fmt.Sprintf("feat: %d new features and improvements", len(r.NewFeatures))
	case len(r.Refactoring) > 0:
		return "refactor: Code quality improvements and optimizations"
	case len(r.BugFixes) > 0:
		return fmt.Sprintf("fix: %d bug fixes and improvements", len(r.BugFixes))
	default:
		return fmt.Sprintf("chore: %d commits with various improvements", len(records))
	}
}

// UniqueFiles returns the sorted, de-duplicated files touched by records.
func UniqueFiles(records []models.CommitRecord) []string {
	seen := make(map[string]struct{})
	files := []string{}
	for _, rec := range records {
		for _, f := range rec.FilesChanged {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}

// EstimateReviewTime renders a heuristic review duration: two minutes per
// commit, one per 50 changed lines, and one per two files.
func EstimateReviewTime(commits, files, lines int) string {
	minutes := commits*2 + lines/50 + files/2
	switch {
	case minutes < 1:
		return "Less than a minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}
