package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type key int

const UserIDKey key = 0

// SessionMiddleware resolves the session once per request: it reads the
// token from the session cookie or an Authorization: Bearer header and, when
// valid, stores the user id in the request context. Anonymous requests pass
// through untouched.
func SessionMiddleware(jwtService *JWTService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if cookie, err := r.Cookie("token"); err == nil {
				tokenStr = cookie.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}

			if tokenStr != "" {
				if userID, err := jwtService.ValidateToken(tokenStr); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests. It must run after
// SessionMiddleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserIDFromContext(r.Context()) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext returns the authenticated user id, or 0 for
// anonymous requests.
func GetUserIDFromContext(ctx context.Context) int64 {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0
	}
	return userID
}
