package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/tenant"
	"github.com/comandapos/comanda-app/utils"
)

// TenantResolver resolves the request's tenant exactly once (jwt claim,
// then X-Tenant-ID header, then subdomain) and stores the result in the
// request context. Requests without a resolvable tenant never reach the
// handlers behind it.
func TenantResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := tenant.Resolve(
			c.GetString("jwt_tenant_id"),
			c.GetHeader(tenant.HeaderName),
			c.Request.Host,
		)
		if err != nil {
			utils.RespondError(c, apperr.Status(err), err)
			c.Abort()
			return
		}

		c.Set("tenant_id", identity.TenantID)
		c.Set("tenant_source", identity.Source)

		c.Next()
	}
}
