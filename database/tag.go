package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/meteohub/weatherstation/database/models"
	"gorm.io/gorm"
)

// TagFilter narrows tag (location / sensor type) list queries.
type TagFilter struct {
	// AssignedOnly restricts the result to tags referenced by at least one
	// of the user's sensors.
	AssignedOnly bool
}

const locationAssigned = "EXISTS(SELECT 1 FROM sensors WHERE sensors.location_id = locations.id AND sensors.user_id = ?)"

// ListLocations returns the user's locations ordered by name, each annotated
// with its is_assigned flag.
func (c *Client) ListLocations(ctx context.Context, userID uint, filter TagFilter) ([]models.Location, error) {
	q := c.db.WithContext(ctx).
		Model(&models.Location{}).
		Select("locations.*, "+locationAssigned+" AS is_assigned", userID).
		Where("locations.user_id = ?", userID)
	if filter.AssignedOnly {
		q = q.Where(locationAssigned, userID)
	}

	var locations []models.Location
	if err := q.Order("locations.name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// GetLocation returns one of the user's locations. A location owned by a
// different user is indistinguishable from a missing one.
func (c *Client) GetLocation(ctx context.Context, userID, id uint) (*models.Location, error) {
	var location models.Location
	err := c.db.WithContext(ctx).
		Model(&models.Location{}).
		Select("locations.*, "+locationAssigned+" AS is_assigned", userID).
		Where("locations.id = ? AND locations.user_id = ?", id, userID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// CreateLocation creates a location owned by the user.
func (c *Client) CreateLocation(ctx context.Context, userID uint, name string) (*models.Location, error) {
	location := models.Location{UserID: userID, Name: name}
	if err := c.db.WithContext(ctx).Create(&location).Error; err != nil {
		log.Error("failed to create location", "error", err)
		return nil, err
	}
	return &location, nil
}

// GetOrCreateLocation returns the user's location with the given name,
// creating it if it does not exist yet. Concurrent identical requests may
// race to create; the duplicate lookup is benign.
func (c *Client) GetOrCreateLocation(ctx context.Context, userID uint, name string) (*models.Location, error) {
	var location models.Location
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&location).Error
	if err == nil {
		return &location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return c.CreateLocation(ctx, userID, name)
}

// UpdateLocation renames one of the user's locations.
func (c *Client) UpdateLocation(ctx context.Context, userID, id uint, name string) (*models.Location, error) {
	res := c.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return c.GetLocation(ctx, userID, id)
}

// DeleteLocation deletes one of the user's locations and detaches it from
// any sensors that reference it.
func (c *Client) DeleteLocation(ctx context.Context, userID, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Location{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Sensor{}).
			Where("location_id = ?", id).
			Update("location_id", nil).Error
	})
}

const sensorTypeAssigned = "EXISTS(SELECT 1 FROM sensors WHERE sensors.sensor_type_id = sensor_types.id AND sensors.user_id = ?)"

// ListSensorTypes returns the user's sensor types ordered by name, each
// annotated with its is_assigned flag.
func (c *Client) ListSensorTypes(ctx context.Context, userID uint, filter TagFilter) ([]models.SensorType, error) {
	q := c.db.WithContext(ctx).
		Model(&models.SensorType{}).
		Select("sensor_types.*, "+sensorTypeAssigned+" AS is_assigned", userID).
		Where("sensor_types.user_id = ?", userID)
	if filter.AssignedOnly {
		q = q.Where(sensorTypeAssigned, userID)
	}

	var sensorTypes []models.SensorType
	if err := q.Order("sensor_types.name ASC").Find(&sensorTypes).Error; err != nil {
		return nil, err
	}
	return sensorTypes, nil
}

// GetSensorType returns one of the user's sensor types.
func (c *Client) GetSensorType(ctx context.Context, userID, id uint) (*models.SensorType, error) {
	var sensorType models.SensorType
	err := c.db.WithContext(ctx).
		Model(&models.SensorType{}).
		Select("sensor_types.*, "+sensorTypeAssigned+" AS is_assigned", userID).
		Where("sensor_types.id = ? AND sensor_types.user_id = ?", id, userID).
		First(&sensorType).Error
	if err != nil {
		return nil, err
	}
	return &sensorType, nil
}

// CreateSensorType creates a sensor type owned by the user.
func (c *Client) CreateSensorType(ctx context.Context, userID uint, name, unit string) (*models.SensorType, error) {
	sensorType := models.SensorType{UserID: userID, Name: name, Unit: unit}
	if err := c.db.WithContext(ctx).Create(&sensorType).Error; err != nil {
		log.Error("failed to create sensor type", "error", err)
		return nil, err
	}
	return &sensorType, nil
}

// GetOrCreateSensorType returns the user's sensor type with the given name
// and unit, creating it if it does not exist yet.
func (c *Client) GetOrCreateSensorType(ctx context.Context, userID uint, name, unit string) (*models.SensorType, error) {
	var sensorType models.SensorType
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND unit = ?", userID, name, unit).
		First(&sensorType).Error
	if err == nil {
		return &sensorType, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return c.CreateSensorType(ctx, userID, name, unit)
}

// SensorTypeUpdate is a partial update of a sensor type. Nil fields are left
// unchanged.
type SensorTypeUpdate struct {
	Name *string
	Unit *string
}

// UpdateSensorType applies a partial update to one of the user's sensor types.
func (c *Client) UpdateSensorType(ctx context.Context, userID, id uint, update SensorTypeUpdate) (*models.SensorType, error) {
	values := map[string]any{}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Unit != nil {
		values["unit"] = *update.Unit
	}
	if len(values) > 0 {
		res := c.db.WithContext(ctx).
			Model(&models.SensorType{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return c.GetSensorType(ctx, userID, id)
}

// DeleteSensorType deletes one of the user's sensor types and detaches it
// from any sensors that reference it.
func (c *Client) DeleteSensorType(ctx context.Context, userID, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SensorType{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Sensor{}).
			Where("sensor_type_id = ?", id).
			Update("sensor_type_id", nil).Error
	})
}
