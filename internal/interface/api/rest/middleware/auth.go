package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"file-share-api/internal/domain/file"
	"file-share-api/internal/infrastructure/jwt"
)

const (
	CtxUserID   = "userID"
	CtxUsername = "username"
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)

		c.Next()
	}
}

// OptionalAuthMiddleware attaches an identity when a bearer token is present
// and valid, and lets the request through anonymously when the header is
// absent. A token that is present but invalid is still rejected: a client
// that tried to authenticate should hear that it failed.
func OptionalAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)

		c.Next()
	}
}

// RequesterFrom converts the middleware-set identity into the requester the
// access policy consumes. Missing or malformed identity means anonymous.
func RequesterFrom(c *gin.Context) file.Requester {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return file.Anonymous()
	}
	s, ok := v.(string)
	if !ok {
		return file.Anonymous()
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return file.Anonymous()
	}
	return file.AuthenticatedAs(id)
}
