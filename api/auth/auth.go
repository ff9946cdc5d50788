// Package auth resolves opaque token credentials to users. Tokens are
// presented either as an Authorization header ("Token <key>" or
// "Bearer <key>") or, on routes that opt in, as an X-API-Key header for
// machine clients.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/database"
	"github.com/meteohub/weatherstation/database/models"
)

const apiKeyHeader = "X-API-Key"

// Provider authenticates requests against the token store.
type Provider struct {
	db       *database.Client
	tokenTTL time.Duration
}

// New creates an auth provider. Tokens issued by Login expire after ttl;
// tokens issued by Token never expire.
func New(db *database.Client, ttl time.Duration) *Provider {
	return &Provider{db: db, tokenTTL: ttl}
}

func credentialFromRequest(c *gin.Context, allowAPIKey bool) string {
	if allowAPIKey {
		if key := c.GetHeader(apiKeyHeader); key != "" {
			return key
		}
	}
	header := c.GetHeader("Authorization")
	for _, scheme := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimPrefix(header, scheme)
		}
	}
	return ""
}

// RequireAuth returns a middleware that rejects requests without a valid
// credential and stores the resolved user on the context. When allowAPIKey
// is set, the X-API-Key header is accepted in addition to the Authorization
// header.
func (p *Provider) RequireAuth(allowAPIKey bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := credentialFromRequest(c, allowAPIKey)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			c.Abort()
			return
		}
		user, token, err := p.db.ResolveToken(c.Request.Context(), raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("auth_token", token)
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireAuth. It panics when
// called outside an authenticated route.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

// CurrentToken returns the token the request authenticated with.
func CurrentToken(c *gin.Context) *models.AuthToken {
	return c.MustGet("auth_token").(*models.AuthToken)
}
