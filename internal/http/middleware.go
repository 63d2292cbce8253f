package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/room-reservations/internal/application"
)

// AdminAuthenticator resolves a bearer token to an administrator principal.
type AdminAuthenticator interface {
	Authenticate(token string) (application.Principal, error)
}

// RequireAdmin authenticates the bearer token and attaches the resulting
// principal to the request context. When the authenticator runs without a
// configured hash every caller passes.
func RequireAdmin(authenticator AdminAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				responder.writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", nil)
				return
			}

			token := bearerToken(r)
			principal, err := authenticator.Authenticate(token)
			if err != nil {
				log := handlerLogger(r.Context(), logger, "RequireAdmin", "", "error_kind", application.ErrorKind(err))
				switch {
				case token == "":
					log.WarnContext(r.Context(), "missing administrator token")
					w.Header().Set("WWW-Authenticate", `Bearer realm="reservations"`)
					responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", errMissingAdminToken)
				case errors.Is(err, application.ErrInvalidCredentials):
					log.WarnContext(r.Context(), "administrator token rejected")
					responder.writeError(r.Context(), w, http.StatusForbidden, "AUTH_FORBIDDEN", errInvalidAdminToken)
				default:
					log.ErrorContext(r.Context(), "administrator token verification failed", "error", err)
					responder.writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", nil)
				}
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequestLogger attaches a request scoped logger and records request timing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

// RequestTimeout bounds each request's context.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
