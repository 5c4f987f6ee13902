package main

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/panbanda/mrsummary/internal/logging"
	"github.com/panbanda/mrsummary/internal/output"
	"github.com/panbanda/mrsummary/internal/service/analysis"
	svcoutput "github.com/panbanda/mrsummary/internal/service/output"
	"github.com/panbanda/mrsummary/pkg/config"
)

// session is the per-invocation state shared by commands: the effective
// config, where it came from, and a logger writing to stderr.
type session struct {
	cfg      *config.Config
	source   string
	logger   *zap.Logger
	closeLog func()
}

func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

func newSession(c *cli.Context) (*session, error) {
	res, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(res.Config.Log, c.Bool("verbose"),
		logging.WithConsole(zapcore.AddSync(c.App.ErrWriter)),
		logging.WithColor(colored(c, res.Config) && isTerminal(c.App.ErrWriter)),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", zap.String("source", sourceName(res.Source)))

	return &session{cfg: res.Config, source: res.Source, logger: logger, closeLog: closeLog}, nil
}

// close flushes the logger and releases the log file.
func (s *session) close() {
	s.closeLog()
}

// analysis builds the analysis service. The spinner is shown only on an
// interactive stderr and never alongside debug logs.
func (s *session) analysis(c *cli.Context) *analysis.Service {
	return analysis.New(
		analysis.WithConfig(s.cfg),
		analysis.WithLogger(s.logger),
		analysis.WithSpinner(!c.Bool("verbose") && isTerminal(c.App.ErrWriter)),
	)
}

// output builds the output service from --format, --output and the config.
func (s *session) output(c *cli.Context) (*svcoutput.Service, error) {
	format := c.String("format")
	if format == "" {
		format = s.cfg.Output.Format
	}
	if !output.ValidFormat(format) {
		return nil, errors.WithHint(
			errors.Newf("unsupported format %q", format),
			"use one of: markdown, json, text, toon")
	}

	return svcoutput.New(
		svcoutput.WithFormat(svcoutput.ParseFormat(format)),
		svcoutput.WithWriter(c.App.Writer),
		svcoutput.WithColor(colored(c, s.cfg) && isTerminal(c.App.Writer)),
		svcoutput.WithFile(c.String("output")),
	)
}

// write renders view and reports the destination when it is a file.
func (s *session) write(c *cli.Context, view output.Renderable) error {
	out, err := s.output(c)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Output(view); err != nil {
		return errors.Wrap(err, "write output")
	}
	if path := out.FilePath(); path != "" {
		color.New(color.FgGreen).Fprintf(c.App.Writer, "Output written to %s\n", path)
	}
	return nil
}

func colored(c *cli.Context, cfg *config.Config) bool {
	return cfg.Output.Color && !c.Bool("no-color")
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func sourceName(source string) string {
	if strings.TrimSpace(source) == "" {
		return "defaults"
	}
	return source
}
