package logging

import "context"

type loggerKey struct{}

// WithContext stores a request-scoped logger on ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored by WithContext or fallback.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	if fallback == nil {
		return Nop()
	}
	return fallback
}
