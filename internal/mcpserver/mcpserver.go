package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/panbanda/mrsummary/internal/service/analysis"
	"github.com/panbanda/mrsummary/pkg/config"
)

// Server wraps the MCP server and registers the merge request tools.
type Server struct {
	server  *mcp.Server
	config  *config.Config
	logger  *zap.Logger
	service *analysis.Service
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration used to build the analysis service.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithService sets the analysis service (for testing).
func WithService(svc *analysis.Service) Option {
	return func(s *Server) {
		s.service = svc
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		config: config.DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.service == nil {
		s.service = analysis.New(analysis.WithConfig(s.config), analysis.WithLogger(s.logger))
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "mrsummary",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcp.StdioTransport{})
}

// RunWithTransport serves on the given transport until ctx is done or the
// client disconnects.
func (s *Server) RunWithTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("mcp server started", zap.Int("tools", len(toolCatalog)))
	return s.server.Run(ctx, t)
}

// Tool names.
const (
	toolSummary  = "generate_merge_request_summary"
	toolAnalyze  = "analyze_git_commits"
	toolStatus   = "get_repo_status"
	toolBranches = "list_branches"
	toolHistory  = "get_commit_history"
	toolFiles    = "get_changed_files"
)

// toolCatalog lists every tool in registration order.
var toolCatalog = []struct {
	name     string
	describe func() string
}{
	{toolSummary, describeSummary},
	{toolAnalyze, describeAnalyze},
	{toolStatus, describeStatus},
	{toolBranches, describeBranches},
	{toolHistory, describeHistory},
	{toolFiles, describeFiles},
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{Name: toolSummary, Description: describeSummary()}, s.handleSummary)
	mcp.AddTool(s.server, &mcp.Tool{Name: toolAnalyze, Description: describeAnalyze()}, s.handleAnalyze)
	mcp.AddTool(s.server, &mcp.Tool{Name: toolStatus, Description: describeStatus()}, s.handleStatus)
	mcp.AddTool(s.server, &mcp.Tool{Name: toolBranches, Description: describeBranches()}, s.handleBranches)
	mcp.AddTool(s.server, &mcp.Tool{Name: toolHistory, Description: describeHistory()}, s.handleHistory)
	mcp.AddTool(s.server, &mcp.Tool{Name: toolFiles, Description: describeFiles()}, s.handleFiles)
}
