// Package logging builds the zap-backed logr.Logger used across the module.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V(...).
const (
	VERBOSE = 1
	DEBUG   = 2
	TRACE   = 3
)

type Options struct {
	// Verbosity is the highest V level that is emitted.
	Verbosity int
	// Development switches to the human-readable console encoder.
	Development bool
}

// New creates a logger. Levels above opts.Verbosity are discarded.
func New(opts Options) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-1 * opts.Verbosity))
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), errors.Wrap(err, "unable to build zap logger")
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger creates a development logger that emits every level.
func NewTestLogger() logr.Logger {
	logger, err := New(Options{Verbosity: TRACE, Development: true})
	if err != nil {
		return logr.Discard()
	}
	return logger
}
