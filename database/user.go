package database

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/meteohub/weatherstation/database/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an email/password pair does not
// match an active user. The message never reveals which part was wrong.
var ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

// NormalizeEmail lowercases the domain part of an email address and leaves
// the local part as provided.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateUser creates a new active user with a bcrypt-hashed password.
func (c *Client) CreateUser(ctx context.Context, email, name, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        NormalizeEmail(email),
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return &user, nil
}

// GetUser returns the user with the given id.
func (c *Client) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate resolves an email/password pair to a user. Inactive users
// and unknown emails fail the same way as a wrong password.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := c.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UserUpdate is a partial update of a user's own profile. Nil fields are
// left unchanged. The staff and superuser flags are not updatable here.
type UserUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// UpdateUser applies a partial profile update and returns the fresh row.
func (c *Client) UpdateUser(ctx context.Context, id uint, update UserUpdate) (*models.User, error) {
	user, err := c.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		user.Email = NormalizeEmail(*update.Email)
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := c.db.WithContext(ctx).Save(user).Error; err != nil {
		log.Error("failed to update user", "error", err)
		return nil, err
	}
	return user, nil
}
