package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	infraRepo "github.com/tillpoint/fiscal-api/internal/infrastructure/repository"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/dto/response"
	"github.com/tillpoint/fiscal-api/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware. Besides the user
// identity it establishes the store scope on the request context: operators
// are pinned to their store, managers without a store assignment see all
// stores (head office).
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)

		ctx := c.Request.Context()
		if claims.StoreID != nil {
			c.Set("store_id", *claims.StoreID)
			ctx = infraRepo.WithStore(ctx, *claims.StoreID)
		} else if claims.Role == entity.RoleManager {
			ctx = infraRepo.WithSkipStoreScope(ctx, true)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("user_role")
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}

// GetStoreID retrieves the authenticated user's store from the gin context
func GetStoreID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("store_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
