// Package classify tags commits by their message and files by their path.
package classify

import (
	"strings"

	"github.com/panbanda/mrsummary/pkg/models"
)

// DefaultSignificantLines is the changed-line count above which an
// otherwise untagged commit is a significant change.
const DefaultSignificantLines = 50

type keywordSet map[string]struct{}

func newKeywordSet(words ...string) keywordSet {
	s := make(keywordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// commitKeywords are matched against whitespace-delimited message tokens.
var commitKeywords = map[models.CommitCategory]keywordSet{
	models.CategoryRefactoring:   newKeywordSet("refactor", "refactoring", "cleanup", "restructure"),
	models.CategoryBugFix:        newKeywordSet("fix", "bug", "issue", "error", "resolve", "patch", "hotfix"),
	models.CategoryNewFeature:    newKeywordSet("add", "new", "feature", "implement", "create", "introduce", "feat"),
	models.CategoryCleanup:       newKeywordSet("remove", "delete", "drop", "deprecate", "clean"),
	models.CategoryUpdate:        newKeywordSet("update", "upgrade", "bump", "version"),
	models.CategoryTest:          newKeywordSet("test", "spec", "specs", "testing", "unit", "integration"),
	models.CategoryDocumentation: newKeywordSet("docs", "documentation", "readme", "comment", "doc"),
}

// commitPhrases are matched as substrings of the lowercased message.
var commitPhrases = map[models.CommitCategory][]string{
	models.CategoryRefactoring: {"clean up"},
	models.CategoryUpdate:      {"dependenc"},
}

// breakingWords flag a commit as a breaking change wherever they appear.
var breakingWords = []string{"breaking", "deprecate", "remove"}

// primaryOrder decides which summary list a multi-tagged commit lands in.
var primaryOrder = []models.CommitCategory{
	models.CategoryNewFeature,
	models.CategoryBugFix,
	models.CategoryRefactoring,
}

// CommitClassifier assigns categories to commits.
type CommitClassifier struct {
	significantLines int
}

// NewCommitClassifier returns a classifier that falls back to
// significant_change for untagged commits with more than significantLines
// changed lines. Negative values are treated as zero.
func NewCommitClassifier(significantLines int) *CommitClassifier {
	if significantLines < 0 {
		significantLines = 0
	}
	return &CommitClassifier{significantLines: significantLines}
}

// Classify returns the categories matched by the commit message in
// evaluation order. It always returns at least one category.
func (c *CommitClassifier) Classify(rec models.CommitRecord) []models.CommitCategory {
	msg := strings.ToLower(rec.Message)
	tokens := strings.Fields(msg)

	var cats []models.CommitCategory
	for _, cat := range models.KeywordCategories {
		if matchesCategory(cat, msg, tokens) {
			cats = append(cats, cat)
		}
	}
	if len(cats) > 0 {
		return cats
	}

	if rec.TotalLines() > c.significantLines {
		return []models.CommitCategory{models.CategorySignificantChange}
	}
	return []models.CommitCategory{models.CategoryOther}
}

func matchesCategory(cat models.CommitCategory, msg string, tokens []string) bool {
	words := commitKeywords[cat]
	for _, tok := range tokens {
		if _, ok := words[tok]; ok {
			return true
		}
	}
	for _, phrase := range commitPhrases[cat] {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

var defaultCommitClassifier = NewCommitClassifier(DefaultSignificantLines)

// Commit classifies rec with the default significant-change threshold.
func Commit(rec models.CommitRecord) []models.CommitCategory {
	return defaultCommitClassifier.Classify(rec)
}

// Primary picks the summary bucket for a commit: new_feature, then bug_fix,
// then refactoring. It returns false when none of the three matched.
func Primary(cats []models.CommitCategory) (models.CommitCategory, bool) {
	for _, want := range primaryOrder {
		for _, cat := range cats {
			if cat == want {
				return want, true
			}
		}
	}
	return "", false
}

// IsBreaking reports whether message mentions a breaking change.
func IsBreaking(message string) bool {
	msg := strings.ToLower(message)
	for _, w := range breakingWords {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
