package httpx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticate requires the shared service API key and records the actor
// role and subject from the forwarded headers.
func Authenticate(apiKey string, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get(HeaderAPIKey))
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				metrics.AuthFailure("api_key")
				WriteError(w, r, http.StatusUnauthorized, "unauthorized", "missing or invalid api key")
				return
			}
			principal := Principal{
				SubjectID: strings.TrimSpace(r.Header.Get(HeaderActorID)),
				Role:      strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole))),
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRoles rejects principals whose role is not in the allow-list.
func RequireRoles(metrics *Metrics, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := PrincipalFromContext(r.Context()).Role
			if _, ok := allowed[role]; !ok {
				metrics.AuthFailure("role")
				WriteError(w, r, http.StatusForbidden, "forbidden", "role not permitted for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Default().ErrorContext(r.Context(), "panic recovered",
					"module", "http",
					"layer", "adapter",
					"operation", r.Method+" "+r.URL.Path,
					"outcome", "failure",
					"request_id", RequestIDFromContext(r.Context()),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type recorder struct {
	middleware.WrapResponseWriter
	errorCode string
}

func (r *recorder) setErrorCode(code string) { r.errorCode = code }

// AccessLog logs one line per request and feeds the request metrics.
func AccessLog(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &recorder{WrapResponseWriter: middleware.NewWrapResponseWriter(w, r.ProtoMajor)}
			next.ServeHTTP(rec, r)

			status := rec.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(started)
			metrics.Observe(r.Method, route, status, elapsed)

			fields := []any{
				"module", "http",
				"layer", "adapter",
				"operation", r.Method + " " + route,
				"status_code", status,
				"duration_ms", elapsed.Milliseconds(),
				"request_id", RequestIDFromContext(r.Context()),
			}
			switch {
			case status >= 500:
				slog.Default().ErrorContext(r.Context(), "request failed", append(fields, "outcome", "failure", "error_code", rec.errorCode)...)
			case status >= 400:
				slog.Default().WarnContext(r.Context(), "request rejected", append(fields, "outcome", "rejected", "error_code", rec.errorCode)...)
			default:
				slog.Default().InfoContext(r.Context(), "request served", append(fields, "outcome", "success")...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
