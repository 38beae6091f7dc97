package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mindforge/mindmap-api/auth"
	"github.com/mindforge/mindmap-api/models"
	"gorm.io/gorm"
)

type contextKey string

const userKey contextKey = "user"

// SessionCookie is the name of the http-only cookie carrying the JWT.
const SessionCookie = "session"

// WithSession resolves the session token (cookie first, then bearer header),
// loads the user, and attaches it to the request context. Requests without a
// valid session pass through unauthenticated; handlers that need an identity
// check UserFrom themselves.
func WithSession(db *gorm.DB, secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := auth.ParseToken(token, secretKey)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			var user models.User
			if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user attached by WithSession, if any.
func UserFrom(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userKey).(*models.User)
	return user, ok
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
