package logging

import (
	"log/slog"
	"time"
)

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func String(key, value string) slog.Attr { return slog.String(key, value) }

// Error keys err under "error". A nil error is still logged so the record
// shape stays the same.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. The console format
// prints it ahead of the message.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// ErrorWithContext logs at error level with event_type and error_hint always
// present; attrs that already carry either key win over the defaults.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	hasEvent, hasHint := false, false
	args := make([]any, 0, len(attrs)+2)
	for _, attr := range attrs {
		switch attr.Key {
		case FieldEventType:
			hasEvent = true
		case FieldErrorHint:
			hasHint = true
		}
		args = append(args, attr)
	}
	if !hasEvent {
		args = append(args, String(FieldEventType, eventType))
	}
	if !hasHint {
		args = append(args, String(FieldErrorHint, "check the log file for details"))
	}
	logger.Error(msg, args...)
}
