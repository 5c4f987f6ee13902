// Package logging builds the zap logger shared by the CLI and the MCP server.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/panbanda/mrsummary/pkg/config"
)

type options struct {
	console zapcore.WriteSyncer
	color   bool
}

// Option configures New.
type Option func(*options)

// WithConsole sets the console sink. Defaults to stderr, which keeps
// stdout free for reports and the MCP stdio transport.
func WithConsole(w zapcore.WriteSyncer) Option {
	return func(o *options) { o.console = w }
}

// WithColor toggles colored level names on the console.
func WithColor(enabled bool) Option {
	return func(o *options) { o.color = enabled }
}

// ParseLevel maps a level name onto a zap level. Unknown names are Info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG":
		return zap.DebugLevel
	case "WARN", "WARNING":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	case "FATAL":
		return zap.FatalLevel
	case "DPANIC":
		return zap.DPanicLevel
	default:
		return zap.InfoLevel
	}
}

// ConsoleEncoderConfig is the short-key console layout.
func ConsoleEncoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = "C"
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}

// FileEncoderConfig is the layout of the optional log file.
func FileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New builds a logger from the log config. verbose forces debug level.
// When cfg.File is set, entries are also appended to that file, as JSON
// lines if cfg.JSON is true. The returned func flushes the logger and
// closes the log file.
func New(cfg config.LogConfig, verbose bool, opts ...Option) (*zap.Logger, func(), error) {
	o := options{console: zapcore.Lock(os.Stderr)}
	for _, opt := range opts {
		opt(&o)
	}

	level := ParseLevel(cfg.Level)
	if verbose {
		level = zap.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(ConsoleEncoderConfig(o.color)), o.console, level),
	}

	closeFile := func() {}
	if cfg.File != "" {
		f, err := openLogFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		closeFile = func() { _ = f.Close() }
		var enc zapcore.Encoder
		if cfg.JSON {
			enc = zapcore.NewJSONEncoder(FileEncoderConfig())
		} else {
			enc = zapcore.NewConsoleEncoder(ConsoleEncoderConfig(false))
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create log directory %s", dir)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "open log file %s", path),
			"check log.file in the config or leave it empty to log to stderr only")
	}
	return f, nil
}
