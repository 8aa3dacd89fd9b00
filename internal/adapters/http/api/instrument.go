package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/forest/pkg/logger"
	"github.com/okian/forest/pkg/metrics"
)

// requestFields tags the request context with the chi request id so that
// anything the handlers log carries it.
func requestFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = logger.WithFields(ctx, logger.String("request_id", id))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument records request count, latency and failures for one route.
// The endpoint label is fixed per route so that path parameters such as
// entry ids never reach the label set.
func instrument(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			code := strconv.Itoa(status)
			metrics.RecordHTTPRequest(endpoint, r.Method, code)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Milliseconds()))
			if status >= http.StatusBadRequest {
				metrics.RecordErrorByComponent("http_"+endpoint, failureKind(status))
			}
		})
	}
}

func failureKind(status int) string {
	switch {
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}
