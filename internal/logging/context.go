package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one orchestration run.
	FieldRunID = "run_id"
	// FieldItem is the standardized structured logging key for backup item names.
	FieldItem = "item"
	// FieldStep is the standardized structured logging key for job step kinds.
	FieldStep = "step"
	// FieldCommand carries the rendered command line of a step.
	FieldCommand = "command"
	// FieldEventType classifies a record for log consumers.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
)

type contextKey int

const (
	runIDKey contextKey = iota
	itemKey
)

// WithRunID annotates ctx with the run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithItem annotates ctx with the backup item name.
func WithItem(ctx context.Context, item string) context.Context {
	return context.WithValue(ctx, itemKey, item)
}

// ItemFromContext returns the backup item name stored in ctx.
func ItemFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	item, ok := ctx.Value(itemKey).(string)
	return item, ok && item != ""
}

// WithContext returns logger tagged with the run id and item stored in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	args := make([]any, 0, 2)
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		args = append(args, slog.String(FieldRunID, id))
	}
	if item, ok := ItemFromContext(ctx); ok {
		args = append(args, slog.String(FieldItem, item))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
