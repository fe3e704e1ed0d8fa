// Package extensions provides ready-made graph extensions: structured
// operation logging and a dependents-tree tracer.
package extensions

import (
	"log/slog"
	"time"

	calcgraph "github.com/calc-fn/calcgraph-go"
)

// LoggingExtension logs graph operations through slog: completed
// operations at debug level with their duration, compute failures at
// error level.
type LoggingExtension struct {
	calcgraph.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a logging extension writing to the given
// slog.Handler (use HumanHandler for formatted CLI output, SilentHandler
// for tests, or any other handler).
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: calcgraph.NewBaseExtension("logging"),
		logger:        slog.New(handler),
	}
}

func (e *LoggingExtension) Wrap(next func() (any, error), op *calcgraph.Operation) (any, error) {
	start := time.Now()
	result, err := next()
	duration := time.Since(start)

	if err == nil {
		e.logger.Debug("operation completed",
			"op", string(op.Kind),
			"key", op.Key.String(),
			"duration", duration,
		)
	}
	return result, err
}

func (e *LoggingExtension) OnError(err error, op *calcgraph.Operation, g *calcgraph.Graph) {
	e.logger.Error("compute failed",
		"op", string(op.Kind),
		"key", op.Key.String(),
		"error", err.Error(),
	)
}
