package summary

import (
	"fmt"
	"strings"

	"github.com/panbanda/mrsummary/pkg/models"
)

// describe renders the Markdown description of a non-empty report.
func (g *Generator) describe(r *models.SummaryReport) string {
	var b strings.Builder

	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "This merge request contains %d commits with %d files changed (%d insertions, %d deletions).\n\n",
		r.TotalCommits, r.TotalFilesChanged, r.TotalInsertions, r.TotalDeletions)

	b.WriteString("## Key Changes\n")
	if len(r.KeyChanges) > 0 {
		b.WriteString(strings.Join(headOf(r.KeyChanges, g.maxKeyChanges), "\n"))
		b.WriteString("\n\n")
	}

	sections := []struct {
		key   string
		items []string
	}{
		{"new_features", r.NewFeatures},
		{"bug_fixes", r.BugFixes},
		{"refactoring", r.Refactoring},
		{"breaking_changes", r.BreakingChanges},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%d)\n", models.TitleCase(s.key), len(s.items))
		b.WriteString(strings.Join(s.items, "\n"))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "### Files Affected (%d)\n", len(r.FilesAffected))
	for _, group := range g.GroupFiles(r.FilesAffected) {
		fmt.Fprintf(&b, "\n**%s:**\n", group.Category)
		writeFileList(&b, group.Files, g.maxFilesPerCategory)
	}

	b.WriteString("\n### Summary\n")
	fmt.Fprintf(&b, "- **Total Commits:** %d\n", r.TotalCommits)
	fmt.Fprintf(&b, "- **Files Changed:** %d\n", r.TotalFilesChanged)
	fmt.Fprintf(&b, "- **Lines Added:** %d\n", r.TotalInsertions)
	fmt.Fprintf(&b, "- **Lines Removed:** %d\n", r.TotalDeletions)
	fmt.Fprintf(&b, "- **Estimated Review Time:** %s\n", r.EstimatedReviewTime)

	return b.String()
}

// writeFileList writes up to limit files as bullets, then a remainder line.
// A non-positive limit lists every file.
func writeFileList(b *strings.Builder, files []string, limit int) {
	shown := headOf(files, limit)
	for _, f := range shown {
		fmt.Fprintf(b, "- `%s`\n", f)
	}
	if rest := len(files) - len(shown); rest > 0 {
		fmt.Fprintf(b, "- ... and %d more\n", rest)
	}
}

func headOf(items []string, n int) []string {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
