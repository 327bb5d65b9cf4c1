package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	claims := JWTClaims{
		UserID:   "u-1",
		Username: "kasir1",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": GetClaims(c).Role})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	r := protectedRouter()
	token := signToken(t, "cashier", time.Now().Add(time.Hour))

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cashier")
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	r := protectedRouter()

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	r := protectedRouter()
	token := signToken(t, "cashier", time.Now().Add(-time.Hour))

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	r := protectedRouter()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{Role: "admin"}).
		SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter("supervisor", "admin")

	w := doRequest(r, "Bearer "+signToken(t, "admin", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "Bearer "+signToken(t, "cashier", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
