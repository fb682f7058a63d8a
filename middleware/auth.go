package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feedpulse/feedpulse/services"
	"github.com/feedpulse/feedpulse/utils"
)

// ContextUserIDKey is the key under which the verified acting-user id is
// stored in the Gin context for the duration of one request.
const ContextUserIDKey = "user_id"

// AuthRequired verifies the bearer token through the session issuer and
// attaches the acting user to the request context.
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := BearerToken(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		if utils.IsTokenBlacklisted(token) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token revoked"})
			return
		}

		userID, err := auth.Verify(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Next()
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserID returns the acting user id set by AuthRequired.
func UserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
