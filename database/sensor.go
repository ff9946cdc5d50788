package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/meteohub/weatherstation/database/models"
	"gorm.io/gorm"
)

// SensorFilter narrows sensor list queries. Empty slices mean no filtering.
type SensorFilter struct {
	LocationIDs   []uint
	SensorTypeIDs []uint
}

// ListSensors returns the user's sensors, newest first, restricted by the
// given filter.
func (c *Client) ListSensors(ctx context.Context, userID uint, filter SensorFilter) ([]models.Sensor, error) {
	q := c.db.WithContext(ctx).
		Preload("SensorType").
		Preload("Location").
		Where("user_id = ?", userID)
	if len(filter.LocationIDs) > 0 {
		q = q.Where("location_id IN ?", filter.LocationIDs)
	}
	if len(filter.SensorTypeIDs) > 0 {
		q = q.Where("sensor_type_id IN ?", filter.SensorTypeIDs)
	}

	var sensors []models.Sensor
	if err := q.Distinct().Order("id DESC").Find(&sensors).Error; err != nil {
		return nil, err
	}
	return sensors, nil
}

// GetSensor returns one of the user's sensors with its tags loaded. A sensor
// owned by a different user is indistinguishable from a missing one.
func (c *Client) GetSensor(ctx context.Context, userID, id uint) (*models.Sensor, error) {
	var sensor models.Sensor
	err := c.db.WithContext(ctx).
		Preload("SensorType").
		Preload("Location").
		Where("id = ? AND user_id = ?", id, userID).
		First(&sensor).Error
	if err != nil {
		return nil, err
	}
	return &sensor, nil
}

// CreateSensor creates a sensor owned by the user. Tag ids must already be
// scoped to the same user; the nested get-or-create happens in the handler
// before the sensor row is persisted.
func (c *Client) CreateSensor(ctx context.Context, userID uint, name, description string, sensorTypeID, locationID *uint) (*models.Sensor, error) {
	sensor := models.Sensor{
		UserID:       userID,
		Name:         name,
		Description:  description,
		SensorTypeID: sensorTypeID,
		LocationID:   locationID,
	}
	if err := c.db.WithContext(ctx).Create(&sensor).Error; err != nil {
		log.Error("failed to create sensor", "error", err)
		return nil, err
	}
	return c.GetSensor(ctx, userID, sensor.ID)
}

// SensorUpdate is a partial update of a sensor. Nil fields are left
// unchanged. The tag references use an explicit set flag so they can be
// cleared with a null payload.
type SensorUpdate struct {
	Name          *string
	Description   *string
	SetSensorType bool
	SensorTypeID  *uint
	SetLocation   bool
	LocationID    *uint
}

// UpdateSensor applies a partial update to one of the user's sensors.
func (c *Client) UpdateSensor(ctx context.Context, userID, id uint, update SensorUpdate) (*models.Sensor, error) {
	values := map[string]any{}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if update.SetSensorType {
		values["sensor_type_id"] = update.SensorTypeID
	}
	if update.SetLocation {
		values["location_id"] = update.LocationID
	}
	if len(values) > 0 {
		res := c.db.WithContext(ctx).
			Model(&models.Sensor{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return c.GetSensor(ctx, userID, id)
}

// DeleteSensor deletes one of the user's sensors together with all of its
// measurements.
func (c *Client) DeleteSensor(ctx context.Context, userID, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Sensor{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("sensor_id = ?", id).Delete(&models.Measurement{}).Error
	})
}
