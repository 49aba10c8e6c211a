package diag

import (
	"context"
	"log/slog"
)

// NewSlogReporter returns a Reporter that logs each event as a structured
// record: warnings at slog.LevelWarn, errors at slog.LevelError. A nil logger
// uses slog.Default().
func NewSlogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogReporter{logger: logger}
}

type slogReporter struct {
	logger *slog.Logger
}

func (r *slogReporter) Report(e Event) {
	level := slog.LevelError
	if e.Severity == SeverityWarning {
		level = slog.LevelWarn
	}
	ctx := context.Background()
	if !r.logger.Enabled(ctx, level) {
		return
	}
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("path", e.Path),
	}
	if e.Key != "" {
		attrs = append(attrs, slog.String("key", e.Key))
	}
	if e.Field != "" {
		attrs = append(attrs, slog.String("field", e.Field))
	}
	if e.Expected != "" {
		attrs = append(attrs, slog.String("expected", e.Expected))
	}
	if e.Actual != "" {
		attrs = append(attrs, slog.String("actual", e.Actual))
	}
	if e.Line > 0 {
		attrs = append(attrs, slog.Int("line", e.Line), slog.Int("column", e.Column))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.Any("cause", e.Cause))
	}
	r.logger.LogAttrs(ctx, level, e.Message, attrs...)
}
