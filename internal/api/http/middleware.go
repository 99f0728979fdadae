package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"blooddrive-backend/internal/config"
	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type actorKey struct{}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Handler authenticates and authorizes a request according to the security
// level of its named route.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		level := config.GetSecurityLevel(name)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractToken(r)
		if !ok {
			if level == config.SecurityOptional {
				next.ServeHTTP(w, r)
				return
			}
			writeMessage(w, http.StatusUnauthorized, "authorization token is not provided")
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			return
		}
		if claims.Type != security.TokenTypeAccess {
			writeMessage(w, http.StatusForbidden, "access token required")
			return
		}
		if level == config.SecurityAdmin && claims.Role != domain.UserRoleAdmin {
			logger.WarnContext(r.Context(), "Admin route denied", "route", name, "userID", claims.UserID)
			writeMessage(w, http.StatusForbidden, "admin role required")
			return
		}

		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), claims.Actor())))
	})
}

func extractToken(r *http.Request) (string, bool) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", false
	}
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

const requestIDHeader = "X-Request-ID"

// requestLogger tags the request context with a request id, echoes it in the
// response and logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logger.With(r.Context(), "request_id", id, "method", r.Method, "path", r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		logger.InfoContext(ctx, "HTTP request",
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// recoverer turns a handler panic into a 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Handler panic", "panic", rec)
				writeMessage(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
