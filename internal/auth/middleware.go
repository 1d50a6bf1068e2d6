package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/wm-metals/trade-api/internal/config"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(&cfg.Auth),
		logger:       logger,
	}
}

// Authenticate rejects requests without a valid bearer token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Unauthorized: missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("role", userCtx.Role),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithUserContext(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate attaches a user context when a valid token is
// present but lets unauthenticated requests through
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if userCtx, err := m.jwtValidator.ValidateToken(token); err == nil {
				ctx := WithUserContext(r.Context(), userCtx)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			} else {
				m.logger.Debug("optional auth: token validation failed, continuing unauthenticated",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the authenticated user holds one of the given roles
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no user context", http.StatusForbidden)
				return
			}

			if !userCtx.HasAnyRole(roles...) {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireWriter blocks read-only roles from mutating endpoints
func (m *Middleware) RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no user context", http.StatusForbidden)
			return
		}

		if !userCtx.CanWrite() {
			http.Error(w, "Forbidden: read-only access", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
