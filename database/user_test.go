package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Alice@example.com", NormalizeEmail("Alice@EXAMPLE.COM"))
	assert.Equal(t, "bob@example.com", NormalizeEmail("bob@example.com"))
	assert.Equal(t, "no-at-sign", NormalizeEmail("no-at-sign"))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	user, err := c.CreateUser(ctx, "Alice@EXAMPLE.COM", "Alice", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, "Alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "testpass123", user.PasswordHash)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateUser(ctx, "dup@example.com", "One", "testpass123")
	require.NoError(t, err)
	_, err = c.CreateUser(ctx, "dup@EXAMPLE.com", "Two", "testpass123")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	createTestUser(t, c, "login@example.com")

	user, err := c.Authenticate(ctx, "login@example.com", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)

	_, err = c.Authenticate(ctx, "login@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = c.Authenticate(ctx, "unknown@example.com", "testpass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUserProfile(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "old@example.com")

	email := "new@EXAMPLE.com"
	name := "New Name"
	updated, err := c.UpdateUser(ctx, user.ID, UserUpdate{Email: &email, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "New Name", updated.Name)
	assert.False(t, updated.IsStaff)

	password := "newpass12345"
	_, err = c.UpdateUser(ctx, user.ID, UserUpdate{Password: &password})
	require.NoError(t, err)
	_, err = c.Authenticate(ctx, "new@example.com", "newpass12345")
	assert.NoError(t, err)
}

func TestIssueAndResolveToken(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "token@example.com")

	raw, token, err := c.IssueToken(ctx, user.ID, 10*time.Hour)
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.NotContains(t, token.Digest, raw)
	assert.Equal(t, raw[:8], token.TokenKey)
	require.NotNil(t, token.ExpiresAt)

	resolved, resolvedToken, err := c.ResolveToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, token.ID, resolvedToken.ID)

	_, _, err = c.ResolveToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResolveExpiredTokenDeletesIt(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "expired@example.com")

	raw, _, err := c.IssueToken(ctx, user.ID, -time.Minute)
	require.NoError(t, err)

	_, _, err = c.ResolveToken(ctx, raw)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Still gone on a second attempt.
	_, _, err = c.ResolveToken(ctx, raw)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNonExpiringToken(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "machine@example.com")

	raw, token, err := c.IssueToken(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, token.ExpiresAt)

	_, _, err = c.ResolveToken(ctx, raw)
	assert.NoError(t, err)
}

func TestRevokeTokens(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	user := createTestUser(t, c, "revoke@example.com")

	raw1, token1, err := c.IssueToken(ctx, user.ID, time.Hour)
	require.NoError(t, err)
	raw2, _, err := c.IssueToken(ctx, user.ID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.RevokeToken(ctx, token1.ID))
	_, _, err = c.ResolveToken(ctx, raw1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, _, err = c.ResolveToken(ctx, raw2)
	assert.NoError(t, err)

	require.NoError(t, c.RevokeAllTokens(ctx, user.ID))
	_, _, err = c.ResolveToken(ctx, raw2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
