// Package logging defines the context-aware structured logger used across
// shopkeeper. The server logs through zap, the CLI through log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "cart updated", "user_id", id, "slot", slot)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }
