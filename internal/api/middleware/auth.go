package middleware

import (
	"Polyclinic/internal/pkg/consts"
	"Polyclinic/internal/pkg/redis"
	"Polyclinic/internal/pkg/response"
	"Polyclinic/internal/pkg/security"
	"Polyclinic/internal/service"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the JWT, rejects blacklisted tokens and
// injects the caller identity into the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, service.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, service.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		value, err := redis.GetValue(c.Request.Context(), consts.TokenBlacklistKey+signature)
		if err != nil {
			response.Fail(c, response.InternalServerError, service.UnExpectedError.Error())
			c.Abort()
			return
		}
		if value != "" {
			response.Fail(c, response.Unauthorized, service.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, service.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		c.Set("patient_id", claims.PatientID)
		c.Set("role", claims.Role)
		c.Set("token", tokenString)

		newCtx := context.WithValue(c.Request.Context(), "patient_id", claims.PatientID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
