package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/api/models"
	"github.com/meteohub/weatherstation/database"
)

// Login exchanges email and password for an expiring token.
func (p *Provider) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := p.db.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}
	raw, token, err := p.db.IssueToken(c.Request.Context(), user.ID, p.tokenTTL)
	if err != nil {
		log.Error("failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: raw, Expiry: token.ExpiresAt})
}

// Token exchanges email and password for a non-expiring token, for clients
// that cannot refresh credentials (e.g. station firmware).
func (p *Provider) Token(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := p.db.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}
	raw, _, err := p.db.IssueToken(c.Request.Context(), user.ID, 0)
	if err != nil {
		log.Error("failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: raw})
}

// Logout revokes the token the request authenticated with.
func (p *Provider) Logout(c *gin.Context) {
	token := CurrentToken(c)
	if err := p.db.RevokeToken(c.Request.Context(), token.ID); err != nil {
		log.Error("failed to revoke token", "error", err, "token_key", token.TokenKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.Status(http.StatusNoContent)
}

// LogoutAll revokes every token of the calling user.
func (p *Provider) LogoutAll(c *gin.Context) {
	user := CurrentUser(c)
	if err := p.db.RevokeAllTokens(c.Request.Context(), user.ID); err != nil {
		log.Error("failed to revoke tokens", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke tokens"})
		return
	}
	c.Status(http.StatusNoContent)
}
