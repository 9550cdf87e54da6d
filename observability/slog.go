package observability

import "log/slog"

// SlogLogger adapts the standard library's structured logger to Logger.
type SlogLogger struct {
	h *slog.Logger
}

// NewSlogLogger wraps h. A nil h falls back to slog.Default().
func NewSlogLogger(h *slog.Logger) *SlogLogger {
	if h == nil {
		h = slog.Default()
	}
	return &SlogLogger{h: h}
}

func (l *SlogLogger) Debug(msg string, fields ...Field) { l.h.Debug(msg, toAttrs(fields)...) }
func (l *SlogLogger) Info(msg string, fields ...Field)  { l.h.Info(msg, toAttrs(fields)...) }
func (l *SlogLogger) Warn(msg string, fields ...Field)  { l.h.Warn(msg, toAttrs(fields)...) }
func (l *SlogLogger) Error(msg string, fields ...Field) { l.h.Error(msg, toAttrs(fields)...) }

func (l *SlogLogger) With(fields ...Field) Logger {
	return &SlogLogger{h: l.h.With(toAttrs(fields)...)}
}

func toAttrs(fields []Field) []any {
	attrs := make([]any, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key(), f.Value()))
	}
	return attrs
}
