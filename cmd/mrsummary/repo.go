package main

import (
	"github.com/urfave/cli/v2"

	svcoutput "github.com/panbanda/mrsummary/internal/service/output"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the working tree status of a repository",
		Flags:  []cli.Flag{repoFlag()},
		Action: runStatus,
	}
}

func runStatus(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.analysis(c).Status(c.String("repo"))
	if err != nil {
		return err
	}
	return s.write(c, svcoutput.StatusView(st))
}

func branchesCmd() *cli.Command {
	return &cli.Command{
		Name:   "branches",
		Usage:  "List local and remote branches",
		Flags:  []cli.Flag{repoFlag()},
		Action: runBranches,
	}
}

func runBranches(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	list, err := s.analysis(c).Branches(c.String("repo"))
	if err != nil {
		return err
	}
	return s.write(c, svcoutput.BranchesView(list))
}
