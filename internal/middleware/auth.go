package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminKey holds the authenticated admin name in the gin context.
const AdminKey = "admin"

// AdminRequired guards mutating routes with HTTP basic auth. The password is
// checked against a bcrypt hash. An empty username disables the check.
func AdminRequired(username, passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username == "" {
			c.Next()
			return
		}

		user, password, ok := c.Request.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
			c.Header("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(AdminKey, user)
		c.Next()
	}
}
