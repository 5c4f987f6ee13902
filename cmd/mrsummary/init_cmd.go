package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/mrsummary/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize a new mrsummary configuration file",
		ArgsUsage: "[path]",
		Description: `Creates a new mrsummary.toml configuration file in the current directory
with the default settings. Pass a path to write it elsewhere.

Examples:
  mrsummary init                             # Creates mrsummary.toml
  mrsummary init .mrsummary/mrsummary.toml   # Creates config in .mrsummary directory
  mrsummary init --force                     # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	outputPath := "mrsummary.toml"
	if c.Args().Len() > 0 {
		outputPath = c.Args().First()
	}

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return errors.WithHint(
			errors.Newf("config file %q already exists", outputPath),
			"use --force to overwrite")
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %q", dir)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}

	color.New(color.FgGreen).Fprintf(c.App.Writer, "Created %s\n", outputPath)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize summary settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(*config.DefaultConfig())
	if err != nil {
		return "", errors.Wrap(err, "marshal config to TOML")
	}

	var buf strings.Builder
	buf.WriteString("# mrsummary configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/mrsummary\n\n")
	buf.Write(content)

	return buf.String(), nil
}
