package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AuthMiddleware requires "Authorization: Bearer <apiKey>" on every request it wraps.
func AuthMiddleware(apiKey string, log *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				jsonError(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				log.Warn("rejected api key",
					"path", r.URL.Path,
					"remote", r.RemoteAddr,
					"request_id", middleware.GetReqID(r.Context()))
				jsonError(w, "invalid api key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ObserveRequests logs every request and feeds its duration and status into stats
// under the matched route pattern. Unmatched paths are logged but not recorded.
func ObserveRequests(log *slog.Logger, stats *RouteStats) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			if route != "" {
				stats.Observe(r.Method+" "+route, elapsed, status)
			}
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", elapsed.Milliseconds(),
			)
		})
	}
}
