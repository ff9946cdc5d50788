package database

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/meteohub/weatherstation/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrCrossUserReference is returned when a write tries to attach an entity
// owned by a different user, e.g. a measurement pointing at another user's
// sensor. Callers map it to a validation error, not a not-found.
var ErrCrossUserReference = errors.New("referenced object belongs to a different user")

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
// Pass ":memory:" for an in-memory database.
func New(path string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	c := &Client{db: db}
	if err := c.Migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Migrate creates or updates the schema for all entities.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.Location{},
		&models.SensorType{},
		&models.Sensor{},
		&models.Measurement{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats reports the row count per table.
func (c *Client) Stats() (map[string]int64, error) {
	stats := make(map[string]int64)
	for name, model := range map[string]any{
		"users":        &models.User{},
		"auth_tokens":  &models.AuthToken{},
		"locations":    &models.Location{},
		"sensor_types": &models.SensorType{},
		"sensors":      &models.Sensor{},
		"measurements": &models.Measurement{},
	} {
		var count int64
		if err := c.db.Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		stats[name] = count
	}
	return stats, nil
}
