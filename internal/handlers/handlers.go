package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
	"github.com/fassa-ttu/fassa-backend/internal/repository"
	"github.com/fassa-ttu/fassa-backend/internal/service"
	"github.com/fassa-ttu/fassa-backend/pkg/auth"
	"github.com/fassa-ttu/fassa-backend/pkg/config"
	"github.com/fassa-ttu/fassa-backend/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	accounts      service.AccountService
	records       service.RecordsService
	rateLimitRepo repository.RateLimitRepository
	config        *config.Config
}

func New(
	accounts service.AccountService,
	records service.RecordsService,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		accounts:      accounts,
		records:       records,
		rateLimitRepo: rateLimitRepo,
		config:        config,
	}
}

// RequireAuth parses the bearer token and stores the claims in the
// request context. It rejects refresh tokens used as access tokens.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
			return
		}
		if !domain.Role(claims.Role).Valid() {
			writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
			return
		}

		ctx := context.WithValue(r.Context(), logger.AccountIDKey, claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimit applies a per-IP fixed-window limit; errors fail open.
func (h *Handlers) RateLimit(name string, requests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := name + ":" + getClientIP(r)

			allowed, err := h.rateLimitRepo.CheckRateLimit(r.Context(), key, requests, window)
			if err != nil {
				logger.WarnContext(r.Context(), "Rate limit check failed", "error", err)
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMIT_EXCEEDED")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func callerRole(r *http.Request) domain.Role {
	if claims := getClaims(r); claims != nil {
		return domain.Role(claims.Role)
	}
	return domain.Role("")
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}

// respondError maps the domain error taxonomy onto HTTP. Unrecognized
// errors are logged and surfaced as a generic internal failure.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"code":   "INVALID_INPUT",
			"fields": ve.Fields,
		})
		return
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  ce.Error(),
			"code":   "CONFLICT",
			"fields": map[string]string{ce.Field: ce.Error()},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidCredentials.Error(), "AUTHENTICATION_FAILED")
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", "NOT_FOUND")
	case errors.Is(err, domain.ErrResetTokenExpired):
		writeError(w, http.StatusBadRequest, "Reset token expired", "EXPIRED_TOKEN")
	default:
		logger.ErrorContext(r.Context(), "Internal error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
