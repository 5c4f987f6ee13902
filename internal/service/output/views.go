package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/mrsummary/internal/output"
	"github.com/panbanda/mrsummary/internal/service/analysis"
	"github.com/panbanda/mrsummary/internal/vcs"
	"github.com/panbanda/mrsummary/pkg/analyzer/summary"
	"github.com/panbanda/mrsummary/pkg/models"
)

// NoCommitsMessage is printed for an empty history or file listing in
// markdown and text output.
func NoCommitsMessage(req vcs.LogRequest) string {
	return fmt.Sprintf("No commits found between %s and %s.", req.Base, req.Target)
}

// SummaryView renders a merge request summary. Markdown is "# title"
// followed by the description; JSON is the report itself.
func SummaryView(r *models.SummaryReport) output.Renderable {
	return &output.Document{
		Title:    r.Title,
		Markdown: summary.RenderMarkdown(r),
		Body:     r.Description,
		Data:     r,
	}
}

// AnalysisView renders a commit analysis report. Markdown is the generator's
// report; text lists the same sections with category colors. An empty range
// prints the summary's empty description.
func AnalysisView(res *analysis.AnalysisResult) output.Renderable {
	if res.Range.Empty() {
		return emptyView("Git Commit Analysis", summary.EmptyDescription, res.Analysis)
	}
	return &analysisReport{analysis: res.Analysis, markdown: res.Markdown}
}

type analysisReport struct {
	analysis *models.CommitAnalysis
	markdown string
}

func (r *analysisReport) RenderData() any {
	return r.analysis
}

func (r *analysisReport) RenderMarkdown(w io.Writer) error {
	return (&output.Document{Markdown: r.markdown}).RenderMarkdown(w)
}

func (r *analysisReport) RenderText(w io.Writer, colored bool) error {
	a := r.analysis
	paint := func(cat models.CommitCategory, text string) string {
		if colored {
			return output.CategoryColor(cat, text)
		}
		return text
	}

	const title = "Git Commit Analysis"
	if colored {
		color.New(color.Bold, color.FgCyan).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Commits: %d  Insertions: +%d  Deletions: -%d  Files: %d\n",
		a.TotalCommits, a.TotalInsertions, a.TotalDeletions, len(a.FilesAffected))
	if a.Skipped > 0 {
		fmt.Fprintf(w, "Skipped: %d\n", a.Skipped)
	}

	for _, bucket := range a.Categories {
		fmt.Fprintf(w, "\n%s\n", paint(bucket.Category, fmt.Sprintf("%s (%d)", bucket.Category.Title(), len(bucket.Commits))))
		for _, c := range bucket.Commits {
			fmt.Fprintf(w, "  %s %s (+%d/-%d)\n", paint(bucket.Category, c.Hash), c.Message, c.Insertions, c.Deletions)
		}
	}

	if len(a.SignificantChanges) > 0 {
		fmt.Fprintf(w, "\n%s\n", paint(models.CategorySignificantChange, "Significant Changes"))
		for _, c := range a.SignificantChanges {
			fmt.Fprintf(w, "  %s %s (%d lines)\n", c.Hash, c.Message, c.TotalLines)
		}
	}

	if len(a.FileGroups) > 0 {
		fmt.Fprintln(w, "\nFiles Affected")
		for _, g := range a.FileGroups {
			fmt.Fprintf(w, "  %s (%d)\n", g.Category, len(g.Files))
			for _, f := range g.Files {
				fmt.Fprintf(w, "    %s\n", f)
			}
		}
	}
	return nil
}

// HistoryView renders the commits of a range as a table.
func HistoryView(res *analysis.HistoryResult) output.Renderable {
	if res.Range.Empty() {
		return emptyView("Commit History", NoCommitsMessage(res.Range.Request), res.Entries)
	}
	rows := make([][]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		rows = append(rows, []string{
			e.Hash,
			e.Date,
			e.Author,
			e.Message,
			fmt.Sprintf("+%d/-%d", e.Insertions, e.Deletions),
			strconv.Itoa(len(e.FilesChanged)),
		})
	}
	return output.NewTable(
		fmt.Sprintf("Commit History (%s)", res.Range.Request.Range()),
		[]string{"Hash", "Date", "Author", "Message", "Changes", "Files"},
		rows,
		[]string{"Total", strconv.Itoa(len(res.Entries)), "", "", "", ""},
		res.Entries,
	)
}

// FilesView renders the changed files of a range grouped by category.
func FilesView(res *analysis.FilesResult) output.Renderable {
	if res.Range.Empty() {
		return emptyView("Changed Files", NoCommitsMessage(res.Range.Request), res.Groups)
	}
	var rows [][]string
	for _, g := range res.Groups {
		for _, f := range g.Files {
			rows = append(rows, []string{string(g.Category), f})
		}
	}
	return output.NewTable(
		fmt.Sprintf("Changed Files (%s)", res.Range.Request.Range()),
		[]string{"Category", "File"},
		rows,
		[]string{"Total", strconv.Itoa(res.Groups.Total())},
		res.Groups,
	)
}

// StatusView renders repository status as a field/value table.
func StatusView(st *models.RepoStatus) output.Renderable {
	return output.NewTable(
		"Repository Status",
		[]string{"Field", "Value"},
		[][]string{
			{"Repository", st.Repository},
			{"Current Branch", st.CurrentBranch},
			{"Remote URL", st.RemoteURL},
			{"Dirty", strconv.FormatBool(st.IsDirty)},
			{"Untracked Files", strconv.Itoa(st.UntrackedFiles)},
			{"Staged Changes", strconv.Itoa(st.StagedChanges)},
			{"Unstaged Changes", strconv.Itoa(st.UnstagedChanges)},
		},
		nil,
		st,
	)
}

// BranchesView renders local and remote branches, marking the current one.
func BranchesView(list *models.BranchList) output.Renderable {
	rows := make([][]string, 0, len(list.LocalBranches)+len(list.RemoteBranches))
	for _, b := range list.LocalBranches {
		current := ""
		if b == list.CurrentBranch {
			current = "*"
		}
		rows = append(rows, []string{b, "local", current})
	}
	for _, b := range list.RemoteBranches {
		rows = append(rows, []string{b, "remote", ""})
	}
	return output.NewTable("Branches", []string{"Branch", "Type", "Current"}, rows, nil, list)
}

// emptyView prints msg for markdown and text while JSON and TOON still
// carry the empty data.
func emptyView(title, msg string, data any) output.Renderable {
	return &output.Document{
		Title:    title,
		Markdown: msg + "\n",
		Body:     msg,
		Data:     data,
	}
}
