package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/mrsummary/internal/output"
	"github.com/panbanda/mrsummary/internal/service/analysis"
	"github.com/panbanda/mrsummary/internal/vcs"
	"github.com/panbanda/mrsummary/pkg/models"
)

const sampleLog = `aaaaaaaa1111111111111111111111111111111a
Alice
2024-01-15
Add new feature

 feature.py | 60 ++++++++++++++++++++++++++++++++++----------
 1 file changed, 50 insertions(+), 10 deletions(-)

bbbbbbbb2222222222222222222222222222222b
Bob
2024-01-16
Fix bug in processor

 processor.py | 7 +++++--
 1 file changed, 5 insertions(+), 2 deletions(-)
`

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, args ...string) (vcs.RunResult, error) {
	ret := m.Called(args)
	return ret.Get(0).(vcs.RunResult), ret.Error(1)
}

func hasArg(want string) any {
	return mock.MatchedBy(func(args []string) bool {
		for _, a := range args {
			if a == want {
				return true
			}
		}
		return false
	})
}

// memOpener treats every path as an empty repository on master.
type memOpener struct{}

func (memOpener) PlainOpenWithDetect(string) (*git.Repository, error) {
	return git.Init(memory.NewStorage(), nil)
}

func newTestServer(t *testing.T, res vcs.RunResult, err error) (*Server, *mockRunner) {
	t.Helper()
	r := &mockRunner{}
	r.On("Run", hasArg("rev-parse")).Return(vcs.RunResult{}, nil)
	r.On("Run", hasArg("log")).Return(res, err)
	client := vcs.NewClient(vcs.WithRunner(r), vcs.WithOpener(memOpener{}))
	return NewServer("test", WithService(analysis.New(analysis.WithClient(client)))), r
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}

// rangeInput points at an existing directory; memOpener supplies the repository.
func rangeInput(base string) RangeInput {
	return RangeInput{BaseBranch: base, CurrentBranch: "HEAD", RepoPath: os.TempDir()}
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if server.service == nil {
		t.Fatal("NewServer().service is nil")
	}
}

func TestServerCreationEmptyVersion(t *testing.T) {
	if NewServer("") == nil {
		t.Fatal("NewServer(\"\") returned nil")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"summary":  describeSummary,
		"analyze":  describeAnalyze,
		"status":   describeStatus,
		"branches": describeBranches,
		"history":  describeHistory,
		"files":    describeFiles,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"unknown", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := getFormat(tt.format); got != tt.expected {
				t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.expected)
			}
		})
	}
}

func TestSummaryFormat(t *testing.T) {
	for _, f := range []string{"", "markdown", "md"} {
		if got, err := summaryFormat(f); err != nil || got != output.FormatMarkdown {
			t.Errorf("summaryFormat(%q) = %v, %v", f, got, err)
		}
	}
	if got, err := summaryFormat("json"); err != nil || got != output.FormatJSON {
		t.Errorf("summaryFormat(json) = %v, %v", got, err)
	}
	if _, err := summaryFormat("toon"); err == nil {
		t.Error("summaryFormat(toon) should fail")
	}
}

func TestRepoPathDefault(t *testing.T) {
	if got := repoPath(""); got != "." {
		t.Errorf("repoPath(\"\") = %q", got)
	}
	if got := repoPath("  "); got != "." {
		t.Errorf("repoPath(blank) = %q", got)
	}
	if got := repoPath("/src/app"); got != "/src/app" {
		t.Errorf("repoPath() = %q", got)
	}

	req := RangeInput{BaseBranch: " main ", CurrentBranch: "topic"}.request()
	if req.RepoPath != "." || req.Base != "main" || req.Target != "topic" {
		t.Errorf("request() = %+v", req)
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, result); got != "Error: test error message" {
		t.Errorf("toolError text = %q", got)
	}
}

func TestFormatOutput(t *testing.T) {
	data := map[string]any{"name": "test", "value": 123}

	for _, format := range []string{"", "toon", "json", "markdown"} {
		t.Run(format, func(t *testing.T) {
			out, err := formatOutput(data, getFormat(format))
			if err != nil {
				t.Fatalf("formatOutput failed for format %q: %v", format, err)
			}
			if out == "" {
				t.Errorf("formatOutput returned empty string for format %q", format)
			}
			if strings.HasSuffix(out, "\n") {
				t.Errorf("formatOutput should trim trailing newlines: %q", out)
			}
		})
	}

	out, _ := formatOutput(data, output.FormatMarkdown)
	if !strings.HasPrefix(out, "```json\n") || !strings.HasSuffix(out, "```") {
		t.Errorf("markdown output should be fenced: %q", out)
	}
}

func TestHandleSummary_Markdown(t *testing.T) {
	s, r := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, err := s.handleSummary(context.Background(), nil, SummaryInput{RangeInput: rangeInput("main")})
	if err != nil {
		t.Fatalf("handleSummary error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "# feat: 1 new features and improvements\n\n## Overview\n") {
		t.Errorf("unexpected summary:\n%s", text)
	}
	r.AssertCalled(t, "Run", hasArg("main..HEAD"))
}

func TestHandleSummary_JSON(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, _ := s.handleSummary(context.Background(), nil, SummaryInput{
		RangeInput: rangeInput("main"),
		Format:     "json",
	})
	text := resultText(t, result)
	if err := models.ValidateSummaryJSON([]byte(text)); err != nil {
		t.Fatalf("summary JSON invalid: %v\n%s", err, text)
	}
	var rep models.SummaryReport
	if err := json.Unmarshal([]byte(text), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.TotalCommits != 2 || rep.TotalInsertions != 55 || rep.TotalDeletions != 12 {
		t.Errorf("unexpected totals: %+v", rep)
	}
}

func TestHandleSummary_EmptyRange(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{ExitCode: 128}, nil)

	result, _, _ := s.handleSummary(context.Background(), nil, SummaryInput{RangeInput: rangeInput("develop")})
	if got := resultText(t, result); got != "No commits found between develop and HEAD." {
		t.Errorf("empty markdown = %q", got)
	}

	result, _, _ = s.handleSummary(context.Background(), nil, SummaryInput{RangeInput: rangeInput("develop"), Format: "json"})
	var rep models.SummaryReport
	if err := json.Unmarshal([]byte(resultText(t, result)), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Title != "No changes detected" {
		t.Errorf("empty json title = %q", rep.Title)
	}
}

func TestHandleSummary_BadFormat(t *testing.T) {
	s, r := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, _ := s.handleSummary(context.Background(), nil, SummaryInput{RangeInput: rangeInput("main"), Format: "xml"})
	if !result.IsError {
		t.Fatal("expected tool error for unsupported format")
	}
	text := resultText(t, result)
	if !strings.Contains(text, `unsupported format "xml"`) || !strings.Contains(text, "Hint: use markdown or json") {
		t.Errorf("error text = %q", text)
	}
	r.AssertNotCalled(t, "Run", hasArg("log"))
}

func TestHandleSummary_GitFailure(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{ExitCode: 2, Stderr: []byte("fatal: bad revision")}, nil)

	result, _, err := s.handleSummary(context.Background(), nil, SummaryInput{RangeInput: rangeInput("main")})
	if err != nil {
		t.Fatalf("handler should report failures as tool errors: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError")
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "Error: ") || !strings.Contains(text, "fatal: bad revision") {
		t.Errorf("error text = %q", text)
	}
}

func TestHandleSummary_Timeout(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{}, context.DeadlineExceeded)

	result, _, _ := s.handleSummary(context.Background(), nil, SummaryInput{RangeInput: rangeInput("main")})
	if !result.IsError {
		t.Fatal("expected IsError")
	}
	if text := resultText(t, result); !strings.Contains(text, "timed out") {
		t.Errorf("error text = %q", text)
	}
}

func TestHandleAnalyze(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, _ := s.handleAnalyze(context.Background(), nil, AnalyzeInput{RangeInput: rangeInput("main")})
	text := resultText(t, result)
	if !strings.HasPrefix(text, "# Git Commit Analysis") {
		t.Errorf("unexpected analysis:\n%s", text)
	}
	if !strings.Contains(text, "- `bbbbbbbb` Fix bug in processor (+5/-2)") {
		t.Errorf("missing bug fix entry:\n%s", text)
	}
}

func TestHandleAnalyze_EmptyRange(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{}, nil)

	result, _, _ := s.handleAnalyze(context.Background(), nil, AnalyzeInput{RangeInput: rangeInput("main")})
	if got := resultText(t, result); got != "No commits found between the specified branches." {
		t.Errorf("empty analysis = %q", got)
	}
}

func TestHandleHistory_JSON(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, _ := s.handleHistory(context.Background(), nil, HistoryInput{RangeInput: rangeInput("main"), Format: "json"})
	var got historyPayload
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Range != "main..HEAD" || got.TotalCommits != 2 {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Commits[0].Hash != "aaaaaaaa" || got.Commits[0].Author != "Alice" {
		t.Errorf("unexpected first commit: %+v", got.Commits[0])
	}
}

func TestHandleHistory_TOONDefault(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, _ := s.handleHistory(context.Background(), nil, HistoryInput{RangeInput: rangeInput("main")})
	text := resultText(t, result)
	if json.Valid([]byte(text)) {
		t.Errorf("default format should be toon, got JSON:\n%s", text)
	}
	if !strings.Contains(text, "main..HEAD") {
		t.Errorf("toon output missing range:\n%s", text)
	}
}

func TestHandleFiles_JSON(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{Stdout: []byte(sampleLog)}, nil)

	result, _, _ := s.handleFiles(context.Background(), nil, HistoryInput{RangeInput: rangeInput("main"), Format: "json"})
	var got struct {
		Range      string              `json:"range"`
		TotalFiles int                 `json:"total_files"`
		Files      map[string][]string `json:"files"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalFiles != 2 {
		t.Errorf("total_files = %d", got.TotalFiles)
	}
	if files := got.Files["Backend"]; len(files) != 2 {
		t.Errorf("Backend files = %v", files)
	}
}

func TestHandleFiles_EmptyRange(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{ExitCode: 128}, nil)

	result, _, _ := s.handleFiles(context.Background(), nil, HistoryInput{RangeInput: rangeInput("main"), Format: "json"})
	text := resultText(t, result)
	if !strings.Contains(text, `"files": {}`) {
		t.Errorf("empty files should serialize as an empty object:\n%s", text)
	}
}

func TestHandleBranches(t *testing.T) {
	s, _ := newTestServer(t, vcs.RunResult{}, nil)

	result, _, _ := s.handleBranches(context.Background(), nil, RepoInput{Format: "json"})
	var got models.BranchList
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatal(err)
	}
	if got.CurrentBranch != "master" {
		t.Errorf("current branch = %q", got.CurrentBranch)
	}
}

func TestHandleStatus_NotRepository(t *testing.T) {
	s := NewServer("test")

	result, _, err := s.handleStatus(context.Background(), nil, RepoInput{RepoPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for non-repository path")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "is not a git repository") || !strings.Contains(text, "Hint:") {
		t.Errorf("error text = %q", text)
	}
}

func TestParseFrontmatter(t *testing.T) {
	content := []byte("---\ndescription: Test prompt\narguments:\n  - name: top\n    default: \"30\"\n---\n\nBody {{top}}\n")
	fm, body := parseFrontmatter(content)
	if fm.Description != "Test prompt" {
		t.Errorf("description = %q", fm.Description)
	}
	if len(fm.Arguments) != 1 || fm.Arguments[0].Default != "30" {
		t.Errorf("arguments = %+v", fm.Arguments)
	}
	if body != "Body {{top}}\n" {
		t.Errorf("body = %q", body)
	}

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	if fm.Description != "" || body != "no frontmatter" {
		t.Errorf("parseFrontmatter without frontmatter = %+v, %q", fm, body)
	}
}

func TestSubstituteArg(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		args       map[string]string
		defaultVal string
		expected   string
	}{
		{"use provided value", "base {{base_branch}}", map[string]string{"base_branch": "develop"}, "main", "base develop"},
		{"use default when missing", "base {{base_branch}}", map[string]string{}, "main", "base main"},
		{"use default when empty", "base {{base_branch}}", map[string]string{"base_branch": ""}, "main", "base main"},
		{"nil args", "base {{base_branch}}", nil, "main", "base main"},
		{"no placeholder unchanged", "no placeholder here", map[string]string{"base_branch": "x"}, "main", "no placeholder here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := substituteArg(tt.text, "base_branch", tt.args, tt.defaultVal); got != tt.expected {
				t.Errorf("substituteArg() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestReviewPrompt(t *testing.T) {
	content, err := promptFiles.ReadFile("prompts/review-merge-request.md")
	if err != nil {
		t.Fatalf("embedded prompt missing: %v", err)
	}
	fm, body := parseFrontmatter(content)
	if fm.Description == "" {
		t.Error("prompt description is empty")
	}

	handler := makePromptHandler(fm, body)
	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Name:      "review-merge-request",
			Arguments: map[string]string{"base_branch": "develop"},
		},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", result.Messages)
	}
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	for _, want := range []string{"`HEAD` against `develop`", "repository at `.`", "generate_merge_request_summary"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "{{") {
		t.Errorf("unsubstituted placeholder in:\n%s", text)
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest() error = %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Name != "io.github.panbanda/mrsummary" || m.Version != "1.2.3" {
		t.Errorf("unexpected manifest: %+v", m)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/mrsummary:1.2.3" {
		t.Errorf("unexpected packages: %+v", m.Packages)
	}
	if m.Packages[0].Transport.Type != "stdio" {
		t.Errorf("transport = %q", m.Packages[0].Transport.Type)
	}

	data, _ = GenerateManifest("dev")
	if !strings.Contains(string(data), `"version": "0.0.0"`) {
		t.Errorf("dev version should map to 0.0.0:\n%s", data)
	}
}

func TestManifestListsServedCapabilities(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := NewServer("test")
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	_ = session.Close()
	cancel()
	<-serverDone

	var served, servedPrompts []string
	for _, tool := range tools.Tools {
		served = append(served, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
	for _, p := range prompts.Prompts {
		servedPrompts = append(servedPrompts, p.Name)
	}

	data, err := GenerateManifest("1.2.3")
	require.NoError(t, err)
	var m struct {
		Meta map[string]Capabilities `json:"_meta"`
	}
	require.NoError(t, json.Unmarshal(data, &m))
	caps, ok := m.Meta[publisherKey]
	require.True(t, ok, "manifest missing %s metadata:\n%s", publisherKey, data)

	var listed, listedPrompts []string
	for _, c := range caps.Tools {
		listed = append(listed, c.Name)
		assert.NotEmpty(t, c.Summary, "tool %s has no summary", c.Name)
		assert.NotContains(t, c.Summary, "\n")
	}
	for _, c := range caps.Prompts {
		listedPrompts = append(listedPrompts, c.Name)
	}

	sort.Strings(served)
	sort.Strings(listed)
	assert.Len(t, served, 6)
	assert.Equal(t, served, listed)
	assert.Equal(t, servedPrompts, listedPrompts)
	assert.Equal(t, []string{"review-merge-request"}, listedPrompts)
	assert.Equal(t, "Generates a merge request title and description from the commits between two branches.",
		caps.Tools[0].Summary)
}
