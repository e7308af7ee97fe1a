// Package log carries request-scoped zap loggers through contexts.
package log

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WrapHandler wraps an http.Handler, adding request logging and decorating
// its request context with the logger. Panics in h are logged and answered
// with a 500.
//
// When you call FromContext with a wrapped http handler's request object it
// will return the logger passed here.
func WrapHandler(h http.Handler, logger *zap.Logger) http.Handler {
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger)),
		handlers.PrintRecoveryStack(true),
	)(h)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// cut down on noise, don't log health checks
		if r.URL.Path == "/health" {
			h.ServeHTTP(w, r)
			return
		}

		fields := []zapcore.Field{
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("remote_addr", r.RemoteAddr),
		}
		if ua := r.Header.Get("User-Agent"); ua != "" {
			fields = append(fields, zap.String("user_agent", ua))
		}

		reqLogger := logger.With(fields...)

		ctx := ToContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		metrics := httpsnoop.CaptureMetrics(h, w, r)

		reqLogger.Info("handled",
			zap.Int("code", metrics.Code),
			zap.Int64("size", metrics.Written),
			zap.Duration("duration", metrics.Duration))
	})
}
