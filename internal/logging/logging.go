// Package logging builds the logr.Logger used across showup.
//
// Loggers are backed by zap through zapr and travel in the command context,
// so library packages only depend on the logr API.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrUnknownFormat is returned for log formats other than console and json.
var ErrUnknownFormat = fmt.Errorf("unknown log format (values: [%s, %s])", FormatConsole, FormatJSON)

// Options control the logger construction.
type Options struct {
	Name    string
	Version string
	// Level is the logr verbosity. Higher numbers are more verbose.
	Level  int
	Format string
	// Output defaults to stderr.
	Output io.Writer
}

// New builds a zap-backed logr.Logger.
func New(opts Options) (logr.Logger, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatConsole
	}
	if format != FormatConsole && format != FormatJSON {
		return logr.Discard(), fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if format == FormatJSON {
		encCfg = zap.NewProductionEncoderConfig()
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.ConsoleSeparator = " | "
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	// Zap's levels get more verbose as the number gets smaller,
	// logr's level increases with greater numbers.
	level := zap.NewAtomicLevelAt(zapcore.Level(opts.Level * -1))
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	z := zap.New(core)

	log := zapr.NewLogger(z)
	if opts.Name != "" {
		log = log.WithName(opts.Name)
	}
	if format == FormatJSON && opts.Version != "" {
		log = log.WithValues("version", opts.Version)
	}
	return log, nil
}

// LogMetadata prints build and runtime metadata at debug verbosity.
func LogMetadata(log logr.Logger, version string) {
	log.V(1).Info("starting showup",
		"version", version,
		"go_os", runtime.GOOS,
		"go_arch", runtime.GOARCH,
		"go_version", runtime.Version(),
	)
}

// IntoContext stores the logger in ctx.
func IntoContext(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// FromContext returns the logger in ctx, or a discarding logger.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
