package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

const actorKey = "actor"

// Claims is the JWT payload the service expects from the identity provider
type Claims struct {
	Role           string `json:"role"`
	OrganizationID string `json:"org"`
	jwt.RegisteredClaims
}

// ActorMiddleware resolves the acting user from a Bearer JWT and injects a
// lifecycle.Actor into the request context. The engine trusts this actor;
// token issuance lives with the identity provider, not here.
func ActorMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token",
			})
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token claims",
			})
			return
		}

		role := lifecycle.Role(claims.Role)
		if !role.IsValid() {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   fmt.Sprintf("unknown role %q", claims.Role),
			})
			return
		}

		c.Set(actorKey, lifecycle.Actor{
			ID:             claims.Subject,
			Role:           role,
			OrganizationID: claims.OrganizationID,
		})
		c.Next()
	}
}

// actorFrom retrieves the resolved actor from the request context
func actorFrom(c *gin.Context) lifecycle.Actor {
	actor, _ := c.Get(actorKey)
	a, _ := actor.(lifecycle.Actor)
	return a
}
