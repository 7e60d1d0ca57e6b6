package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/velic22/chirp/pkg/logger"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Auth verifies the Bearer token and stores the caller's user ID in the
// request context. Every rejection happens here, before any domain logic.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Missing or invalid token")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				logger.Debug().Err(err).Msg("rejected bearer token")
				unauthorized(w, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "Invalid token claims")
				return
			}

			sub, _ := claims.GetSubject()
			userID, err := uuid.Parse(sub)
			if err != nil {
				unauthorized(w, "Invalid user ID in token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":{"code":"UNAUTHORIZED","message":%q}}`, message)
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) uuid.UUID {
	return ctx.Value(UserIDKey).(uuid.UUID)
}
