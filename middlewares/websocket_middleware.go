package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comandapos/comanda-app/utils"
)

// WebSocketAuthMiddleware authenticates the handshake via the token
// query parameter. The tenant for the connection comes from the
// verified claim only; client-supplied headers are ignored here.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if claims.TenantID == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("tenant_id", claims.TenantID)

		c.Next()
	}
}
