package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/log"
)

type contextKey string

const identityContextKey contextKey = "identity"

// identityFromContext returns the authenticated caller. The second
// return is false on unauthenticated routes.
func identityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(auth.Identity)
	return id, ok
}

// withSecurity adds security headers, CORS, rate limiting, and request
// logging to a handler. All routes pass through here.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := uuid.NewString()
		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		setSecurityHeaders(w)
		s.setCORSHeaders(w)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// requireAuth verifies the bearer token and places the caller identity
// in the request context. Token failures never leak the reason.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			writeError(r.Context(), w, fmt.Errorf("missing bearer token: %w", core.ErrUnauthorized))
			return
		}

		identity, err := s.auth.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Token rejected", log.FieldError, err)
			writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// public is the middleware chain for unauthenticated routes.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurity(next)
}

// protected is the middleware chain for routes behind bearer auth.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurity(s.requireAuth(next))
}
