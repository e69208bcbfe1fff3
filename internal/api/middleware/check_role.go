package middleware

import (
	"Polyclinic/internal/pkg/response"
	"Polyclinic/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckRoles allows the request through when the caller holds one of
// the required roles.
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")

		hasPermission := false
		for _, required := range requiredRoles {
			if required == role {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			response.Fail(c, response.Forbidden, service.ErrForbidden.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}
