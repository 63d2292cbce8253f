package http

import (
	"context"
	"log/slog"
)

var discardLogger = slog.New(slog.DiscardHandler)

// defaultLogger never returns nil so handlers can log unconditionally.
func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return discardLogger
	}
	return logger
}

// handlerLogger prefers the request-scoped logger installed by RequestLogger,
// which already carries request_id, method and path.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	base := LoggerFromContext(ctx)
	if base == nil {
		base = defaultLogger(fallback)
	}

	group := make([]any, 0, 4+len(attrs))
	group = append(group, slog.String("handler", handlerName))
	if operation != "" {
		group = append(group, slog.String("operation", operation))
	}
	return base.With(append(group, attrs...)...)
}
