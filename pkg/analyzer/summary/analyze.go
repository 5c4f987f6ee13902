package summary

import (
	"fmt"
	"strings"

	"github.com/panbanda/mrsummary/pkg/models"
)

// Analyze builds the categorized commit report. Every commit is listed under
// each category it matched, including the fallback categories.
func (g *Generator) Analyze(records []models.CommitRecord) *models.CommitAnalysis {
	a := &models.CommitAnalysis{
		TotalCommits:       len(records),
		Categories:         []models.CategoryBucket{},
		SignificantChanges: []models.SignificantChange{},
	}

	index := make(map[models.CommitCategory]int)
	for _, c := range g.classifyAll(records) {
		rec := c.record
		a.TotalInsertions += rec.Insertions
		a.TotalDeletions += rec.Deletions
		if !c.ok {
			a.Skipped++
			continue
		}

		entry := models.CategorizedCommit{
			Hash:       rec.ShortHash(),
			Message:    rec.Message,
			Insertions: rec.Insertions,
			Deletions:  rec.Deletions,
		}
		for _, cat := range c.categories {
			i, ok := index[cat]
			if !ok {
				i = len(a.Categories)
				index[cat] = i
				a.Categories = append(a.Categories, models.CategoryBucket{Category: cat})
			}
			a.Categories[i].Commits = append(a.Categories[i].Commits, entry)
		}

		if lines := rec.TotalLines(); lines > g.keyChangeLines {
			a.SignificantChanges = append(a.SignificantChanges, models.SignificantChange{
				Hash:       rec.ShortHash(),
				Message:    rec.Message,
				TotalLines: lines,
			})
		}
	}

	a.FilesAffected = UniqueFiles(records)
	a.FileGroups = g.GroupFiles(a.FilesAffected)
	return a
}

// AnalysisMarkdown renders a CommitAnalysis as a Markdown report.
func (g *Generator) AnalysisMarkdown(a *models.CommitAnalysis) string {
	var b strings.Builder

	b.WriteString("# Git Commit Analysis\n\n")
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Commits:** %d\n", a.TotalCommits)
	fmt.Fprintf(&b, "- **Total Insertions:** %d\n", a.TotalInsertions)
	fmt.Fprintf(&b, "- **Total Deletions:** %d\n", a.TotalDeletions)
	fmt.Fprintf(&b, "- **Files Affected:** %d\n\n", len(a.FilesAffected))

	if len(a.Categories) > 0 {
		b.WriteString("## Commit Categories\n\n")
		for _, bucket := range a.Categories {
			fmt.Fprintf(&b, "### %s (%d)\n", bucket.Category.Title(), len(bucket.Commits))
			for _, c := range bucket.Commits {
				fmt.Fprintf(&b, "- `%s` %s (+%d/-%d)\n", c.Hash, c.Message, c.Insertions, c.Deletions)
			}
			b.WriteString("\n")
		}
	}

	if len(a.SignificantChanges) > 0 {
		b.WriteString("## Significant Changes\n\n")
		for _, c := range a.SignificantChanges {
			fmt.Fprintf(&b, "- `%s` %s (%d lines)\n", c.Hash, c.Message, c.TotalLines)
		}
		b.WriteString("\n")
	}

	if len(a.FileGroups) > 0 {
		b.WriteString("## Files Affected\n\n")
		for _, group := range a.FileGroups {
			fmt.Fprintf(&b, "### %s\n", group.Category)
			writeFileList(&b, group.Files, g.maxFilesPerCategory)
			b.WriteString("\n")
		}
	}

	return b.String()
}
