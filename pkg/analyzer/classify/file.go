package classify

import (
	"strings"

	"github.com/panbanda/mrsummary/pkg/models"
)

// DefaultOtherFilenames are exact paths always filed under Other.
var DefaultOtherFilenames = []string{"utils.py"}

type patternRule struct {
	category models.FileCategory
	patterns []string
}

// pathRules are case-insensitive substring rules, first match wins.
var pathRules = []patternRule{
	{models.FileServices, []string{"service", "api", "client"}},
	{models.FileModels, []string{"model", "entity", "dto", "schema"}},
	{models.FileControllers, []string{"controller", "handler", "route"}},
	{models.FileTests, []string{"test", "spec", "specs", "testing"}},
}

type extensionRule struct {
	category   models.FileCategory
	extensions []string
}

// extensionRules are consulted in order when no path rule matched.
var extensionRules = []extensionRule{
	{models.FileConfiguration, []string{".json", ".config", ".yml", ".yaml", ".xml", ".toml", ".ini"}},
	{models.FileDocumentation, []string{".md", ".txt", ".rst", ".adoc"}},
	{models.FileFrontend, []string{".js", ".jsx", ".ts", ".tsx", ".vue", ".svelte", ".html", ".css", ".scss", ".sass"}},
	{models.FileBackend, []string{".py", ".java", ".cs", ".go", ".rs", ".php", ".rb", ".js", ".ts"}},
}

// ambiguousExtensions belong to both Frontend and Backend.
var ambiguousExtensions = map[string]struct{}{".js": {}, ".ts": {}}

var frontendHints = []string{"component", "page", "view", "ui"}

// FileClassifier files a path under exactly one category.
type FileClassifier struct {
	otherNames map[string]struct{}
}

// FileOption configures a FileClassifier.
type FileOption func(*FileClassifier)

// WithOtherFilenames replaces the list of exact paths forced to Other.
func WithOtherFilenames(names ...string) FileOption {
	return func(f *FileClassifier) {
		f.otherNames = make(map[string]struct{}, len(names))
		for _, n := range names {
			f.otherNames[n] = struct{}{}
		}
	}
}

// NewFileClassifier creates a FileClassifier.
func NewFileClassifier(opts ...FileOption) *FileClassifier {
	f := &FileClassifier{}
	WithOtherFilenames(DefaultOtherFilenames...)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Classify returns the category for path. It never returns an empty category.
func (f *FileClassifier) Classify(path string) models.FileCategory {
	if _, ok := f.otherNames[path]; ok {
		return models.FileOther
	}

	lower := strings.ToLower(path)
	for _, rule := range pathRules {
		if containsAny(lower, rule.patterns) {
			return rule.category
		}
	}

	ext := extension(lower)
	if ext == "" {
		return models.FileOther
	}
	if _, ok := ambiguousExtensions[ext]; ok {
		if containsAny(lower, frontendHints) {
			return models.FileFrontend
		}
		return models.FileBackend
	}
	for _, rule := range extensionRules {
		for _, e := range rule.extensions {
			if e == ext {
				return rule.category
			}
		}
	}
	return models.FileOther
}

// extension returns the text from the last dot, or "" when there is none.
func extension(lower string) string {
	i := strings.LastIndexByte(lower, '.')
	if i < 0 {
		return ""
	}
	return lower[i:]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
