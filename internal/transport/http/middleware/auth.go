package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/infra/logger"
	"github.com/arklim/casting-agency/internal/infra/security"
	"github.com/arklim/casting-agency/internal/usecase"
)

const claimsKey = "claims"

// Authorizer verifies the Authorization header against a required permission.
type Authorizer interface {
	Authorize(ctx context.Context, header string, required domain.Permission) (*security.AccessTokenClaims, error)
}

// RequirePermission rejects the request unless the bearer token grants permission.
// Authorization failures are written with the auth error's status, code and description.
func RequirePermission(authorizer Authorizer, permission domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authorizer.Authorize(c.Request.Context(), c.GetHeader("Authorization"), permission)
		if err != nil {
			var authErr *usecase.AuthError
			if errors.As(err, &authErr) {
				c.AbortWithStatusJSON(authErr.StatusCode(), authErrorBody(authErr))
				return
			}

			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   http.StatusInternalServerError,
				"message": "internal server error",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithSubject(c.Request.Context(), claims.Subject))

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.Subject = claims.Subject
		}

		c.Next()
	}
}

func authErrorBody(authErr *usecase.AuthError) gin.H {
	body := gin.H{
		"success": false,
		"error":   authErr.StatusCode(),
		"message": authErr.Description,
	}
	for key, value := range authErr.Payload() {
		body[key] = value
	}
	return body
}

// GetClaims returns the verified token claims stored by RequirePermission.
func GetClaims(c *gin.Context) (*security.AccessTokenClaims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*security.AccessTokenClaims)
	return claims, ok
}
