package middleware

import (
	"net/http"
	"strings"

	"github.com/Govind-619/CareFund/utils"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// AuthMiddleware validates the bearer token and stores its claims in the
// context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.LogError("Missing Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrInvalidToken})
			return
		}

		// Extract token from Bearer header
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.LogError("Invalid Bearer token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrInvalidToken})
			return
		}

		claims, err := utils.ParseToken(jwtSecret, tokenString)
		if err != nil {
			utils.LogError("Invalid token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrInvalidToken})
			return
		}

		c.Set(userContextKey, claims)
		utils.LogDebug("User %s authenticated as %s", claims.UserID, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			utils.LogError("User not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrInvalidToken})
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		utils.LogError("User %s with role %s denied access to %s", claims.UserID, claims.Role, c.FullPath())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": utils.ErrForbidden})
	}
}

// CurrentUser returns the claims stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
