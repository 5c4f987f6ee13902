package mcpserver

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/panbanda/mrsummary/internal/output"
	"github.com/panbanda/mrsummary/internal/service/analysis"
	svcoutput "github.com/panbanda/mrsummary/internal/service/output"
	"github.com/panbanda/mrsummary/pkg/analyzer/summary"
	"github.com/panbanda/mrsummary/pkg/models"
)

// RangeInput names a repository and a commit range.
type RangeInput struct {
	BaseBranch    string `json:"base_branch,omitempty" jsonschema:"Base branch to compare against. Defaults to the configured base, then the repository's default branch."`
	CurrentBranch string `json:"current_branch,omitempty" jsonschema:"Branch or ref with the changes. Defaults to HEAD."`
	RepoPath      string `json:"repo_path,omitempty" jsonschema:"Path to the git repository. Defaults to the current directory."`
}

// SummaryInput is the input of generate_merge_request_summary.
type SummaryInput struct {
	RangeInput
	Format string `json:"format,omitempty" jsonschema:"Output format: markdown (default) or json."`
}

// AnalyzeInput is the input of analyze_git_commits.
type AnalyzeInput struct {
	RangeInput
}

// RepoInput names a repository for the status and branch tools.
type RepoInput struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Path to the git repository. Defaults to the current directory."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// HistoryInput is the input of get_commit_history and get_changed_files.
type HistoryInput struct {
	RangeInput
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// historyPayload is the structured result of get_commit_history.
type historyPayload struct {
	Range        string                `json:"range" toon:"range"`
	TotalCommits int                   `json:"total_commits" toon:"total_commits"`
	Commits      []models.HistoryEntry `json:"commits" toon:"commits"`
}

// filesPayload is the structured result of get_changed_files.
type filesPayload struct {
	Range      string            `json:"range" toon:"range"`
	TotalFiles int               `json:"total_files" toon:"total_files"`
	Files      models.FileGroups `json:"files" toon:"files"`
}

func (in RangeInput) request() analysis.Request {
	return analysis.Request{
		RepoPath: repoPath(in.RepoPath),
		Base:     strings.TrimSpace(in.BaseBranch),
		Target:   strings.TrimSpace(in.CurrentBranch),
	}
}

func repoPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return "."
	}
	return p
}

func getFormat(format string) output.Format {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

// summaryFormat accepts markdown (default) or json.
func summaryFormat(format string) (output.Format, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return output.FormatMarkdown, nil
	case "json":
		return output.FormatJSON, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unsupported format %q", format),
			"use markdown or json")
	}
}

// formatOutput serializes data as toon, json, or a fenced json block.
func formatOutput(data any, format output.Format) (string, error) {
	text, err := output.Render(format, data)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\n"), nil
}

func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// fail logs err and returns it as a tool error, hints included.
func (s *Server) fail(tool string, err error) (*mcp.CallToolResult, any, error) {
	s.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	msg := err.Error()
	if hint := errors.FlattenHints(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return toolError(msg)
}

func (s *Server) done(tool, text string) (*mcp.CallToolResult, any, error) {
	s.logger.Debug("tool completed",
		zap.String("tool", tool),
		zap.String("tokens", output.FormatTokenCount(output.EstimateTokens(text))))
	return textResult(text)
}

func (s *Server) doneData(tool string, data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return s.fail(tool, errors.Wrap(err, "format result"))
	}
	return s.done(tool, text)
}

func (s *Server) handleSummary(ctx context.Context, req *mcp.CallToolRequest, input SummaryInput) (*mcp.CallToolResult, any, error) {
	const tool = toolSummary
	format, err := summaryFormat(input.Format)
	if err != nil {
		return s.fail(tool, err)
	}

	res, err := s.service.Summary(ctx, input.request())
	if err != nil {
		return s.fail(tool, err)
	}

	if format == output.FormatJSON {
		data, err := summary.RenderJSON(res.Report)
		if err != nil {
			return s.fail(tool, errors.Wrap(err, "encode summary"))
		}
		return s.done(tool, string(data))
	}
	if res.Range.Empty() {
		return s.done(tool, svcoutput.NoCommitsMessage(res.Range.Request))
	}
	return s.done(tool, summary.RenderMarkdown(res.Report))
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	const tool = toolAnalyze
	res, err := s.service.Analyze(ctx, input.request())
	if err != nil {
		return s.fail(tool, err)
	}
	if res.Range.Empty() {
		return s.done(tool, summary.EmptyDescription)
	}
	return s.done(tool, res.Markdown)
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input RepoInput) (*mcp.CallToolResult, any, error) {
	const tool = toolStatus
	st, err := s.service.Status(repoPath(input.RepoPath))
	if err != nil {
		return s.fail(tool, err)
	}
	return s.doneData(tool, st, getFormat(input.Format))
}

func (s *Server) handleBranches(ctx context.Context, req *mcp.CallToolRequest, input RepoInput) (*mcp.CallToolResult, any, error) {
	const tool = toolBranches
	list, err := s.service.Branches(repoPath(input.RepoPath))
	if err != nil {
		return s.fail(tool, err)
	}
	return s.doneData(tool, list, getFormat(input.Format))
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, any, error) {
	const tool = toolHistory
	res, err := s.service.History(ctx, input.request())
	if err != nil {
		return s.fail(tool, err)
	}
	return s.doneData(tool, historyPayload{
		Range:        res.Range.Request.Range(),
		TotalCommits: len(res.Entries),
		Commits:      res.Entries,
	}, getFormat(input.Format))
}

func (s *Server) handleFiles(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, any, error) {
	const tool = toolFiles
	res, err := s.service.Files(ctx, input.request())
	if err != nil {
		return s.fail(tool, err)
	}
	groups := res.Groups
	if groups == nil {
		groups = models.FileGroups{}
	}
	return s.doneData(tool, filesPayload{
		Range:      res.Range.Request.Range(),
		TotalFiles: groups.Total(),
		Files:      groups,
	}, getFormat(input.Format))
}
