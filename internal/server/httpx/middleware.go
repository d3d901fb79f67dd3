package httpx

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const requestIDHeader = "X-Request-ID"

const tracerName = "github.com/dmitrijs2005/shopkeeper/internal/server/httpx"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument extracts W3C trace context, starts a server span, assigns a
// request id and a request-scoped logger, recovers panics and records
// request metrics under route.
func (r *Router) instrument(route string, next http.HandlerFunc) http.Handler {
	prop := otel.GetTextMapPropagator()
	tracer := otel.Tracer(tracerName)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		ctx := prop.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx, span := tracer.Start(ctx, route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		rid := req.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)

		logger := r.logger.With("request_id", rid)
		ctx = logging.WithContext(ctx, logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				logger.Error(ctx, "panic in handler", "route", route, "panic", p)
				rec.status = http.StatusInternalServerError
				writeFailure(rec, http.StatusInternalServerError, msgInternal)
			}

			span.SetAttributes(attribute.Int("http.status_code", rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
			elapsed := time.Since(start)
			r.metrics.ObserveHTTP(req.Method, route, rec.status, elapsed)
			logger.Debug(ctx, "request served", "route", route, "status", rec.status, "duration", elapsed)
		}()

		next(rec, req.WithContext(ctx))
	})
}
