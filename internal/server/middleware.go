package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sentraip-mcp/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	unmatchedRoute  = "unknown"
)

type routeNameKey struct{}

// routeName is filled in by recordRoute once mux has matched a route.
// Requests mux rejects keep the unmatched name.
type routeName struct {
	name string
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// recordRoute runs as mux middleware, so only for matched routes.
func recordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if holder, ok := r.Context().Value(routeNameKey{}).(*routeName); ok {
			if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
				holder.name = cur.GetName()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging writes one access log line and records request metrics for
// every request, matched or not.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := &routeName{name: unmatchedRoute}
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), routeNameKey{}, route)))

		metrics.HTTPRequests.WithLabelValues(route.name, strconv.Itoa(rec.statusCode)).Inc()

		s.logger.Info(
			"http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route.name,
			"status", rec.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", rec.Header().Get(requestIDHeader),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
