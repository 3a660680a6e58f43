package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// tenantID reads the tenant resolved by the middleware. Handlers pass
// it down explicitly; nothing below the controllers re-derives it.
func tenantID(c *gin.Context) string {
	return c.GetString("tenant_id")
}

func uintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}

func parseUintQuery(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id '%s'", raw)
	}
	return uint(v), nil
}

// principalID returns the authenticated user's id, if any.
func principalID(c *gin.Context) *uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
