package database

import (
	"context"
	"testing"
	"time"

	"github.com/meteohub/weatherstation/database/models"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func createTestUser(t *testing.T, c *Client, email string) *models.User {
	t.Helper()
	user, err := c.CreateUser(context.Background(), email, "Test User", "testpass123")
	require.NoError(t, err)
	return user
}

// backdate rewrites a measurement timestamp directly, bypassing the
// immutability the public API enforces. Test fixtures only.
func backdate(t *testing.T, c *Client, id uint, ts time.Time) {
	t.Helper()
	err := c.db.Model(&models.Measurement{}).
		Where("id = ?", id).
		Update("timestamp", ts).Error
	require.NoError(t, err)
}
