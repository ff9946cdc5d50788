package handler

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/api/auth"
	"github.com/meteohub/weatherstation/api/models"
	"github.com/meteohub/weatherstation/database"
)

// CreateUser handles account signup. The email is normalized before the
// uniqueness check so differently-cased domains collapse to one account.
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"password_confirm": "passwords do not match"})
		return
	}

	user, err := h.db.CreateUser(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			c.JSON(http.StatusBadRequest, gin.H{"email": "user with this email already exists"})
			return
		}
		log.Error("failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, models.ToUserResponse(user))
}

// Me returns the caller's own profile.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, models.ToUserResponse(auth.CurrentUser(c)))
}

// UpdateMe partially updates the caller's profile. The owner and staff
// fields are not writable; payload values for them are ignored.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.CurrentUser(c)
	updated, err := h.db.UpdateUser(c.Request.Context(), user.ID, database.UserUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			c.JSON(http.StatusBadRequest, gin.H{"email": "user with this email already exists"})
			return
		}
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserResponse(updated))
}
