package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(userIDKey)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()

	t.Run("valid token sets user id", func(t *testing.T) {
		token, err := GenerateAccessToken(testSecret, "user-1", time.Minute)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		rec := doAuthRequest(r, "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := parseBody(t, rec)["user_id"]; got != "user-1" {
			t.Errorf("expected user-1, got %v", got)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doAuthRequest(r, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %s", code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		rec := doAuthRequest(r, "Token abc")
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %s", code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken("other-secret", "user-1", time.Minute)
		rec := doAuthRequest(r, "Bearer "+token)
		if code := errorCode(t, rec); code != "INVALID_TOKEN" {
			t.Errorf("expected INVALID_TOKEN, got %s", code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, _ := GenerateAccessToken(testSecret, "user-1", -time.Minute)
		rec := doAuthRequest(r, "Bearer "+token)
		if code := errorCode(t, rec); code != "INVALID_TOKEN" {
			t.Errorf("expected INVALID_TOKEN, got %s", code)
		}
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := &JWTClaims{
			UserID:    "user-1",
			TokenType: tokenTypeAuth,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		rec := doAuthRequest(r, "Bearer "+token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
