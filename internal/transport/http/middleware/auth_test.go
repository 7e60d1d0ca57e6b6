package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/velic22/chirp/pkg/logger"
)

func init() {
	logger.Init("test")
}

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID uuid.UUID, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func protectedEcho(t *testing.T) http.Handler {
	return Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := GetUserID(r.Context())
		w.Write([]byte(userID.String()))
	}))
}

func TestAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/chat", nil)
	w := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`, w.Body.String())
}

func TestAuthRejectsBadSignature(t *testing.T) {
	token := signToken(t, "wrong-secret", uuid.New(), time.Now().Add(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, uuid.New(), time.Now().Add(-time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthPassesUserIDToHandler(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, userID, time.Now().Add(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}
