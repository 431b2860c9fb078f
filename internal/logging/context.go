package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithDocument creates a child logger with a document path field
func WithDocument(ctx context.Context, path string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("document", path).Logger()
	return WithContext(ctx, childLogger)
}

// WithPage creates a child logger with a page index field
func WithPage(ctx context.Context, page int) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Int("page", page).Logger()
	return WithContext(ctx, childLogger)
}
