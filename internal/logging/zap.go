package logging

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts *zap.Logger to Logger. Key–value args are turned into
// zap.Any fields; when ctx carries a valid span its trace and span ids are
// attached.
type ZapLogger struct {
	l *zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l}
}

// NewProductionZapLogger builds a JSON logger on stdout tagged with the
// service and environment names.
func NewProductionZapLogger(service, env string, debug bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.InitialFields = map[string]any{
		"service": service,
		"env":     env,
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return NewZapLogger(l), nil
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.l.Debug(msg, fields(ctx, args)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, args ...any) {
	z.l.Info(msg, fields(ctx, args)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.l.Warn(msg, fields(ctx, args)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, args ...any) {
	z.l.Error(msg, fields(ctx, args)...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(fields(nil, args)...)}
}

// Sync flushes buffered entries; call it on shutdown.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

func fields(ctx context.Context, args []any) []zap.Field {
	out := make([]zap.Field, 0, len(args)/2+2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 == len(args) {
			out = append(out, zap.Any("!BADKEY", key))
			break
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			out = append(out,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}
	return out
}
