package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/services"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(token string) (models.Session, error)
}

// RoleChecker reports whether a role may manage the team.
type RoleChecker interface {
	IsAdmin(role string) bool
}

func WithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func SessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(models.Session)
	return session, ok
}

func JWTAuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				writeError(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				logging.Logger.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: Bearer prefix missing in Authorization header for request to %s %s", r.Method, r.URL.Path)
			}

			session, err := auth.Authenticate(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Rejected token for request to %s %s: %v", r.Method, r.URL.Path, err)
				writeError(w, services.ErrSessionExpired.Error(), http.StatusUnauthorized)
				return
			}

			logging.Logger.Debugf("Event ID: JWT_AUTH_SUCCESS, Description: Session %s accepted for %s %s", session.ID, r.Method, r.URL.Path)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAdmin lets through only sessions whose profile role is an admin
// role. It must run after JWTAuthMiddleware.
func RequireAdmin(roles RoleChecker, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, services.ErrSessionExpired.Error(), http.StatusUnauthorized)
			return
		}
		if !roles.IsAdmin(session.Profile.Role) {
			logging.Logger.Warnf("Event ID: ACCESS_FORBIDDEN, Description: Role %q of user %s may not call %s %s", session.Profile.Role, session.UserID, r.Method, r.URL.Path)
			writeError(w, "Access forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func EnableCORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
