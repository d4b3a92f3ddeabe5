package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/CAPS-2026/degreeplan-service/internal/config"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

// CasdoorAuthMiddleware authenticates requests against Casdoor-issued JWTs.
// Casdoor supplies identity only; role assignments always come from this
// service's own database so that a revoked role takes effect on the next
// request.
type CasdoorAuthMiddleware struct {
	client   *casdoorsdk.Client
	userRepo repositories.UserRepository
	config   config.CasdoorConfig
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuthMiddleware{
		client:   client,
		userRepo: userRepo,
		config:   cfg,
	}
}

// AuthMiddleware validates the bearer token and loads the user plus their
// current roles into the request context.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("invalid token: %v", err))
			return
		}

		user, roles, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("failed to resolve user: %v", err))
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_roles", roles)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware rejects requests from users holding none of the given
// roles. Admins always pass.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user_roles")
		if !exists {
			abortForbidden(c, "user roles not found in context")
			return
		}
		roles, ok := value.(models.RoleSet)
		if !ok {
			abortForbidden(c, "invalid user roles format")
			return
		}

		if roles.Has(models.RoleAdmin) {
			c.Next()
			return
		}
		for _, required := range requiredRoles {
			if roles.Has(required) {
				c.Next()
				return
			}
		}

		abortForbidden(c, fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles))
	}
}

// resolveUser maps the token subject to a provisioned user. Unknown subjects
// are rejected rather than auto-provisioned; account creation is an explicit
// admin operation.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, models.RoleSet, error) {
	userID := claims.Id
	if userID == "" {
		return nil, nil, fmt.Errorf("invalid user ID in token")
	}

	user, err := cam.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, fmt.Errorf("user %s is not provisioned", userID)
		}
		return nil, nil, err
	}

	roles, err := cam.userRepo.GetRoles(ctx, nil, userID)
	if err != nil {
		return nil, nil, err
	}

	return user, roles, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
	c.Abort()
}

func abortForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   "forbidden",
		Message: message,
	})
	c.Abort()
}

// GetUserIDFromContext extracts the authenticated user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}
	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}
	return id, nil
}

// GetUserRolesFromContext extracts the authenticated user's roles from the
// Gin context.
func GetUserRolesFromContext(c *gin.Context) (models.RoleSet, error) {
	value, exists := c.Get("user_roles")
	if !exists {
		return nil, fmt.Errorf("user roles not found in context")
	}
	roles, ok := value.(models.RoleSet)
	if !ok {
		return nil, fmt.Errorf("invalid user roles type in context")
	}
	return roles, nil
}
