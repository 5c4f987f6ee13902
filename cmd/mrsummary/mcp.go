package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/mrsummary/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes merge request
summaries as tools that LLMs can invoke. Logs go to stderr.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "mrsummary": {
        "command": "mrsummary",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - generate_merge_request_summary  Title and description for a branch
  - analyze_git_commits             Commits grouped by category
  - get_repo_status                 Working tree status
  - list_branches                   Local and remote branches
  - get_commit_history              Commits in a range
  - get_changed_files               Changed files grouped by category`,
		Action: runMCP,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP server manifest (server.json)",
				Action: runMCPManifest,
			},
		},
	}
}

func runMCP(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	server := mcpserver.NewServer(version,
		mcpserver.WithConfig(s.cfg),
		mcpserver.WithLogger(s.logger),
	)
	return server.Run(c.Context)
}

func runMCPManifest(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return errors.Wrap(err, "generate manifest")
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
