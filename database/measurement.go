package database

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/meteohub/weatherstation/database/models"
	"gorm.io/gorm"
)

// MeasurementFilter narrows measurement list queries. All bounds are
// inclusive and combine with logical AND.
type MeasurementFilter struct {
	SensorIDs []uint
	StartDate *time.Time
	EndDate   *time.Time
	// Latest collapses the filtered result to one row per sensor: the one
	// with the maximum timestamp within that sensor's filtered subset.
	Latest bool
}

// roundValue clamps a reading to the stored decimal(10,2) precision.
func roundValue(v float64) float64 {
	return math.Round(v*100) / 100
}

func (c *Client) measurementScope(ctx context.Context, userID uint, filter MeasurementFilter) *gorm.DB {
	q := c.db.WithContext(ctx).
		Model(&models.Measurement{}).
		Where("user_id = ?", userID)
	if len(filter.SensorIDs) > 0 {
		q = q.Where("sensor_id IN ?", filter.SensorIDs)
	}
	if filter.StartDate != nil {
		q = q.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("timestamp <= ?", *filter.EndDate)
	}
	return q
}

// ListMeasurements returns the user's measurements, newest first, restricted
// by the given filter.
func (c *Client) ListMeasurements(ctx context.Context, userID uint, filter MeasurementFilter) ([]models.Measurement, error) {
	q := c.measurementScope(ctx, userID, filter)
	if filter.Latest {
		latest := c.measurementScope(ctx, userID, filter).
			Select("sensor_id, MAX(timestamp)").
			Group("sensor_id")
		q = q.Where("(sensor_id, timestamp) IN (?)", latest)
	}

	var measurements []models.Measurement
	err := q.Preload("Sensor").
		Preload("Sensor.SensorType").
		Preload("Sensor.Location").
		Distinct().
		Order("id DESC").
		Find(&measurements).Error
	if err != nil {
		return nil, err
	}
	return measurements, nil
}

// GetMeasurement returns one of the user's measurements with the sensor and
// its tags loaded.
func (c *Client) GetMeasurement(ctx context.Context, userID, id uint) (*models.Measurement, error) {
	var measurement models.Measurement
	err := c.db.WithContext(ctx).
		Preload("Sensor").
		Preload("Sensor.SensorType").
		Preload("Sensor.Location").
		Where("id = ? AND user_id = ?", id, userID).
		First(&measurement).Error
	if err != nil {
		return nil, err
	}
	return &measurement, nil
}

// CreateMeasurement records a reading against one of the user's sensors.
// The timestamp is assigned here, never by the client. A sensor owned by a
// different user yields ErrCrossUserReference.
func (c *Client) CreateMeasurement(ctx context.Context, userID uint, value float64, sensorID uint) (*models.Measurement, error) {
	if err := c.checkSensorOwnership(ctx, userID, sensorID); err != nil {
		return nil, err
	}
	measurement := models.Measurement{
		UserID:    userID,
		Value:     roundValue(value),
		Timestamp: time.Now(),
		SensorID:  sensorID,
	}
	if err := c.db.WithContext(ctx).Create(&measurement).Error; err != nil {
		log.Error("failed to create measurement", "error", err)
		return nil, err
	}
	return c.GetMeasurement(ctx, userID, measurement.ID)
}

// MeasurementUpdate is a partial update of a measurement. The timestamp is
// immutable and the owner is not writable.
type MeasurementUpdate struct {
	Value    *float64
	SensorID *uint
}

// UpdateMeasurement applies a partial update to one of the user's
// measurements. Reassigning the sensor to a row owned by a different user
// yields ErrCrossUserReference and leaves the measurement unchanged.
func (c *Client) UpdateMeasurement(ctx context.Context, userID, id uint, update MeasurementUpdate) (*models.Measurement, error) {
	if update.SensorID != nil {
		if err := c.checkSensorOwnership(ctx, userID, *update.SensorID); err != nil {
			return nil, err
		}
	}
	values := map[string]any{}
	if update.Value != nil {
		values["value"] = roundValue(*update.Value)
	}
	if update.SensorID != nil {
		values["sensor_id"] = *update.SensorID
	}
	if len(values) > 0 {
		res := c.db.WithContext(ctx).
			Model(&models.Measurement{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return c.GetMeasurement(ctx, userID, id)
}

// DeleteMeasurement deletes one of the user's measurements.
func (c *Client) DeleteMeasurement(ctx context.Context, userID, id uint) error {
	res := c.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Measurement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NewestMeasurementTime returns the timestamp of the most recent reading
// across all users, or nil when there are no readings yet.
func (c *Client) NewestMeasurementTime(ctx context.Context) (*time.Time, error) {
	var measurement models.Measurement
	err := c.db.WithContext(ctx).Order("timestamp DESC").First(&measurement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &measurement.Timestamp, nil
}

// checkSensorOwnership distinguishes a sensor that exists but belongs to
// someone else from one that does not exist at all: both come back as
// ErrCrossUserReference because the caller is naming a sensor it may not use.
func (c *Client) checkSensorOwnership(ctx context.Context, userID, sensorID uint) error {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Sensor{}).
		Where("id = ? AND user_id = ?", sensorID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrCrossUserReference
	}
	return nil
}
