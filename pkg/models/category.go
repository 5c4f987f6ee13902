package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CommitCategory is a tag assigned to a commit from its message.
type CommitCategory string

const (
	CategoryRefactoring       CommitCategory = "refactoring"
	CategoryBugFix            CommitCategory = "bug_fix"
	CategoryNewFeature        CommitCategory = "new_feature"
	CategoryCleanup           CommitCategory = "cleanup"
	CategoryUpdate            CommitCategory = "update"
	CategoryTest              CommitCategory = "test"
	CategoryDocumentation     CommitCategory = "documentation"
	CategorySignificantChange CommitCategory = "significant_change"
	CategoryOther             CommitCategory = "other"
)

// KeywordCategories lists the keyword-matched categories in evaluation order.
// SignificantChange and Other are fallbacks and never matched by keyword.
var KeywordCategories = []CommitCategory{
	CategoryRefactoring,
	CategoryBugFix,
	CategoryNewFeature,
	CategoryCleanup,
	CategoryUpdate,
	CategoryTest,
	CategoryDocumentation,
}

// Title returns the human-readable heading for the category ("Bug Fix").
func (c CommitCategory) Title() string {
	return TitleCase(string(c))
}

// FileCategory is the single bucket a changed file is filed under.
type FileCategory string

const (
	FileServices      FileCategory = "Services"
	FileModels        FileCategory = "Models"
	FileControllers   FileCategory = "Controllers"
	FileTests         FileCategory = "Tests"
	FileConfiguration FileCategory = "Configuration"
	FileDocumentation FileCategory = "Documentation"
	FileFrontend      FileCategory = "Frontend"
	FileBackend       FileCategory = "Backend"
	FileOther         FileCategory = "Other"
)

// FileCategories lists every file category in report order.
var FileCategories = []FileCategory{
	FileServices,
	FileModels,
	FileControllers,
	FileTests,
	FileConfiguration,
	FileDocumentation,
	FileFrontend,
	FileBackend,
	FileOther,
}

// Valid reports whether c is one of the nine fixed file categories.
func (c FileCategory) Valid() bool {
	for _, known := range FileCategories {
		if c == known {
			return true
		}
	}
	return false
}

// TitleCase turns a snake_case key into a title ("new_features" -> "New Features").
// Casers are stateful, so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
