package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/mrsummary/internal/service/analysis"
	svcoutput "github.com/panbanda/mrsummary/internal/service/output"
)

// rangeFlags are shared by every command that reads a commit range.
func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "base",
			Aliases: []string{"b"},
			Usage:   "Base branch to compare against (default from config, then main/master)",
		},
		&cli.StringFlag{
			Name:  "current",
			Usage: "Branch or ref with the changes (default from config, then HEAD)",
		},
		repoFlag(),
	}
}

func repoFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "repo",
		Aliases: []string{"r"},
		Value:   ".",
		Usage:   "Path to the git repository",
	}
}

func rangeRequest(c *cli.Context) analysis.Request {
	return analysis.Request{
		RepoPath: c.String("repo"),
		Base:     c.String("base"),
		Target:   c.String("current"),
	}
}

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Generate a merge request title and description",
		Description: `Reads the commits between --base and --current and writes a merge request
summary: "# title" followed by the description in markdown, or the full
report as JSON.

Examples:
  mrsummary summary --base main
  mrsummary -f json summary --base develop --current feature/login
  mrsummary -o MR.md summary`,
		Flags:  rangeFlags(),
		Action: runSummary,
	}
}

func runSummary(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.analysis(c).Summary(c.Context, rangeRequest(c))
	if err != nil {
		return err
	}
	return s.write(c, svcoutput.SummaryView(res.Report))
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Categorize the commits in a range",
		Description: `Groups the commits between --base and --current by category (feature, fix,
refactor, ...) and lists the commits with the most changed lines.`,
		Flags:  rangeFlags(),
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.analysis(c).Analyze(c.Context, rangeRequest(c))
	if err != nil {
		return err
	}
	return s.write(c, svcoutput.AnalysisView(res))
}

func commitsCmd() *cli.Command {
	return &cli.Command{
		Name:    "commits",
		Aliases: []string{"history"},
		Usage:   "List the commits in a range",
		Flags:   rangeFlags(),
		Action:  runCommits,
	}
}

func runCommits(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.analysis(c).History(c.Context, rangeRequest(c))
	if err != nil {
		return err
	}
	return s.write(c, svcoutput.HistoryView(res))
}

func filesCmd() *cli.Command {
	return &cli.Command{
		Name:   "files",
		Usage:  "List the files changed in a range, grouped by category",
		Flags:  rangeFlags(),
		Action: runFiles,
	}
}

func runFiles(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.analysis(c).Files(c.Context, rangeRequest(c))
	if err != nil {
		return err
	}
	return s.write(c, svcoutput.FilesView(res))
}
