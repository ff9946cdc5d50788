package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/meteohub/weatherstation/database/models"
	"gorm.io/gorm"
)

const tokenKeyLength = 8

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// IssueToken creates a new opaque token for the user and returns the raw
// token together with its row. Only the SHA-256 digest is persisted. A zero
// ttl issues a token that never expires.
func (c *Client) IssueToken(ctx context.Context, userID uint, ttl time.Duration) (string, *models.AuthToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	raw := hex.EncodeToString(buf)

	token := models.AuthToken{
		UserID:   userID,
		Digest:   hashToken(raw),
		TokenKey: raw[:tokenKeyLength],
	}
	if ttl > 0 {
		expiry := time.Now().Add(ttl)
		token.ExpiresAt = &expiry
	}
	if err := c.db.WithContext(ctx).Create(&token).Error; err != nil {
		return "", nil, err
	}
	return raw, &token, nil
}

// ResolveToken maps a raw token to its owning user. Expired tokens are
// deleted on sight and reported as not found.
func (c *Client) ResolveToken(ctx context.Context, raw string) (*models.User, *models.AuthToken, error) {
	var token models.AuthToken
	err := c.db.WithContext(ctx).
		Where("digest = ?", hashToken(raw)).
		First(&token).Error
	if err != nil {
		return nil, nil, err
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		_ = c.db.WithContext(ctx).Delete(&token).Error
		return nil, nil, gorm.ErrRecordNotFound
	}
	var user models.User
	if err := c.db.WithContext(ctx).First(&user, token.UserID).Error; err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, gorm.ErrRecordNotFound
	}
	return &user, &token, nil
}

// RevokeToken deletes a single token by id.
func (c *Client) RevokeToken(ctx context.Context, tokenID uint) error {
	return c.db.WithContext(ctx).Delete(&models.AuthToken{}, tokenID).Error
}

// RevokeAllTokens deletes every token of the given user.
func (c *Client) RevokeAllTokens(ctx context.Context, userID uint) error {
	return c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AuthToken{}).Error
}
