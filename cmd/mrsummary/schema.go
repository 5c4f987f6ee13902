package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/mrsummary/pkg/models"
)

func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of the summary report",
		Action: func(c *cli.Context) error {
			_, err := c.App.Writer.Write(models.SummarySchema())
			return err
		},
		Subcommands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate a JSON summary report against the schema",
				ArgsUsage: "<file|->",
				Description: `Checks a report written by "mrsummary -f json summary". Pass - to read stdin.

Examples:
  mrsummary -f json -o mr.json summary && mrsummary schema validate mr.json
  mrsummary -f json summary | mrsummary schema validate -`,
				Action: runSchemaValidate,
			},
		},
	}
}

func runSchemaValidate(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.WithHint(
			errors.New("expected exactly one report file"),
			"pass the path of a JSON summary, or - to read stdin")
	}
	path := c.Args().First()

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	if err := models.ValidateSummaryJSON(data); err != nil {
		return errors.Wrapf(err, "%s is not a valid summary report", path)
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Valid summary report: %s\n", path)
	return nil
}
