package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// APITokenAuth gates every request on the Authorization header. The
// expected token is either a plain value compared in constant time, or a
// bcrypt hash when tokenHash is set (so the deployed config never holds
// the cleartext token). Caller identity beyond this is out of scope.
func APITokenAuth(token string, tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader("Authorization")
		if presented == "" || !tokenMatches(presented, token, tokenHash) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorised"})
			return
		}
		c.Next()
	}
}

func tokenMatches(presented, token, tokenHash string) bool {
	if tokenHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(presented)) == nil
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
