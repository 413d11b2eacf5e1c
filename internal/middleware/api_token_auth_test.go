package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthRouter(token, tokenHash string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.APITokenAuth(token, tokenHash), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPITokenAuth_PlainToken(t *testing.T) {
	r := newAuthRouter("secret-token", "")

	assert.Equal(t, http.StatusOK, doRequest(r, "secret-token").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "wrong-token").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestAPITokenAuth_HashedTokenWins(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	// The plain token is ignored once a hash is configured.
	r := newAuthRouter("other-value", string(hash))

	assert.Equal(t, http.StatusOK, doRequest(r, "hashed-secret").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "other-value").Code)
}

func TestAPITokenAuth_NoTokenConfiguredRejectsAll(t *testing.T) {
	r := newAuthRouter("", "")

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "anything").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}
