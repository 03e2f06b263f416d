package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feedbackhub/feedbackhub/models"
	"github.com/feedbackhub/feedbackhub/policy"
	"github.com/feedbackhub/feedbackhub/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey stores the user's display name inside Gin context.
	ContextUserNameKey = "user_name"
	// ContextRoleKey stores the user's role inside Gin context.
	ContextRoleKey = "role"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUserNameKey, claims.Name)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Next()
	}
}

// AdminRequired rejects non-admin actors before the handler runs, so
// admin-only endpoints never touch the store for forbidden callers. Must be
// chained after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := Actor(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
			ctx.Abort()
			return
		}
		if !policy.CanViewStats(actor) {
			utils.Forbidden(ctx, 40310, "admin role required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// Actor assembles the policy actor from the authenticated request context.
func Actor(ctx *gin.Context) (policy.Actor, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return policy.Actor{}, false
	}
	id, ok := value.(uint)
	if !ok {
		return policy.Actor{}, false
	}

	role := models.RoleUser
	if v, exists := ctx.Get(ContextRoleKey); exists {
		if s, ok := v.(string); ok && s != "" {
			role = s
		}
	}
	return policy.Actor{ID: id, Role: role}, true
}
