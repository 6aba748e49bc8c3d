// Package logging builds the zap loggers used across Vellum.
package logging

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Supported encodings.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ErrFormatUnknown is returned for an encoding other than json or console.
var ErrFormatUnknown = errors.New("unknown log format")

// New creates a logger at level ("debug", "info", "warn", "error") with
// the given encoding, writing to stderr.
func New(level, format string) (*zap.Logger, error) {
	return NewWithOutputPaths(level, format, "stderr")
}

// NewWithOutputPaths is New with explicit output paths.
func NewWithOutputPaths(level, format string, outputPaths ...string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}
	if format == "" {
		format = FormatConsole
	}
	levelEncoder := zapcore.CapitalLevelEncoder
	switch format {
	case FormatJSON:
		levelEncoder = zapcore.LowercaseLevelEncoder
	case FormatConsole:
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormatUnknown, format)
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          format,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      outputPaths,
		ErrorOutputPaths: outputPaths,
	}.Build()
}

// Failure logs a failed operation at a level that fits its error kind:
// store faults at error, conflicts at info, everything else at debug.
func Failure(log *zap.Logger, op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	switch types.Kind(err) {
	case types.ErrStoreFault:
		log.Error("store fault", fields...)
	case types.ErrConflict:
		log.Info("handle conflict", fields...)
	default:
		log.Debug("request rejected", fields...)
	}
}
