package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/google/uuid"
)

// Request headers understood by the API. Authentication happens upstream; the
// proxy forwards the user it authenticated.
const (
	HeaderTraceID     = "X-Trace-ID"
	HeaderRemoteUser  = "X-Remote-User"
	HeaderRemoteStaff = "X-Remote-Staff"
)

type ctxKey int

const (
	traceKey ctxKey = iota
	userKey
)

// TraceID returns the trace id assigned to the request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey).(string)
	return id
}

// UserFrom returns the user forwarded with the request.
func UserFrom(ctx context.Context) domain.User {
	u, _ := ctx.Value(userKey).(domain.User)
	return u
}

func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderTraceID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderTraceID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), traceKey, id)))
	})
}

func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := domain.User{Username: strings.TrimSpace(r.Header.Get(HeaderRemoteUser))}
		switch strings.ToLower(r.Header.Get(HeaderRemoteStaff)) {
		case "1", "true", "yes":
			u.IsStaff = true
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func withRequestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"trace_id", TraceID(r.Context()),
			)
			next.ServeHTTP(w, r)
		})
	}
}

// enableCORS answers preflight requests itself. Plain OPTIONS requests (the
// print field discovery) reach the router.
func enableCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case len(allowed) == 0 || allowed["*"]:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderTraceID+", "+HeaderRemoteUser)
			w.Header().Set("Access-Control-Expose-Headers", HeaderTraceID)
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
