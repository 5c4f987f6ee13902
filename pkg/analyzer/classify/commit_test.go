package classify

import (
	"testing"

	"github.com/panbanda/mrsummary/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCommit(t *testing.T) {
	tests := []struct {
		message string
		lines   int
		want    []models.CommitCategory
	}{
		{"Add new feature", 10, []models.CommitCategory{models.CategoryNewFeature}},
		{"Fix bug in processor", 10, []models.CommitCategory{models.CategoryBugFix}},
		{"refactor auth module", 10, []models.CommitCategory{models.CategoryRefactoring}},
		{"Clean up old handlers", 10, []models.CommitCategory{models.CategoryRefactoring, models.CategoryCleanup}},
		{"remove legacy endpoint", 10, []models.CommitCategory{models.CategoryCleanup}},
		{"Bump version to 2.0", 10, []models.CommitCategory{models.CategoryUpdate}},
		{"Upgrade dependencies", 10, []models.CommitCategory{models.CategoryUpdate}},
		{"pin dependency versions", 10, []models.CommitCategory{models.CategoryUpdate}},
		{"add unit tests for parser", 10, []models.CommitCategory{models.CategoryNewFeature, models.CategoryTest}},
		{"Update README docs", 10, []models.CommitCategory{models.CategoryUpdate, models.CategoryDocumentation}},
		{"Fix error and add feature", 10, []models.CommitCategory{models.CategoryBugFix, models.CategoryNewFeature}},
		{"Tweak layout", 51, []models.CommitCategory{models.CategorySignificantChange}},
		{"Tweak layout", 50, []models.CommitCategory{models.CategoryOther}},
		{"prefixed words like fixture or addition", 0, []models.CommitCategory{models.CategoryOther}},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			rec := models.CommitRecord{Message: tt.message, Insertions: tt.lines}
			assert.Equal(t, tt.want, Commit(rec))
		})
	}
}

func TestCommitClassifier_Threshold(t *testing.T) {
	c := NewCommitClassifier(10)
	rec := models.CommitRecord{Message: "tweak", Insertions: 6, Deletions: 5}
	assert.Equal(t, []models.CommitCategory{models.CategorySignificantChange}, c.Classify(rec))

	assert.Equal(t, []models.CommitCategory{models.CategoryOther}, Commit(rec))
}

func TestPrimary(t *testing.T) {
	tests := []struct {
		name string
		cats []models.CommitCategory
		want models.CommitCategory
		ok   bool
	}{
		{"feature beats fix", []models.CommitCategory{models.CategoryBugFix, models.CategoryNewFeature}, models.CategoryNewFeature, true},
		{"fix beats refactor", []models.CommitCategory{models.CategoryRefactoring, models.CategoryBugFix}, models.CategoryBugFix, true},
		{"refactor alone", []models.CommitCategory{models.CategoryRefactoring, models.CategoryCleanup}, models.CategoryRefactoring, true},
		{"none of the three", []models.CommitCategory{models.CategoryDocumentation}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Primary(tt.cats)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsBreaking(t *testing.T) {
	assert.True(t, IsBreaking("BREAKING: drop v1 api"))
	assert.True(t, IsBreaking("Deprecated old client"))
	assert.True(t, IsBreaking("removes flag"))
	assert.False(t, IsBreaking("add feature"))
}
