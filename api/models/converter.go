package models

import (
	"github.com/meteohub/weatherstation/database/models"
)

// ToUserResponse converts a database user to the profile shape. The
// password hash and superuser flag never leave the server.
func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsStaff: u.IsStaff,
	}
}

// ToSensorListItem converts a sensor to its compact list projection.
func ToSensorListItem(s models.Sensor) SensorListItem {
	return SensorListItem{
		ID:   s.ID,
		Name: s.Name,
	}
}

// ToSensorListItems converts a slice of sensors to list projections.
func ToSensorListItems(sensors []models.Sensor) []SensorListItem {
	result := make([]SensorListItem, len(sensors))
	for i, s := range sensors {
		result[i] = ToSensorListItem(s)
	}
	return result
}

// ToSensorDetail converts a sensor to its full projection, including the
// nested tags when set.
func ToSensorDetail(s *models.Sensor) SensorDetail {
	detail := SensorDetail{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
	}
	if s.SensorType != nil {
		detail.SensorType = &SensorTypeNested{
			ID:   s.SensorType.ID,
			Name: s.SensorType.Name,
			Unit: s.SensorType.Unit,
		}
	}
	if s.Location != nil {
		detail.Location = &LocationNested{
			ID:   s.Location.ID,
			Name: s.Location.Name,
		}
	}
	return detail
}

// ToMeasurementListItem converts a measurement to its compact projection.
func ToMeasurementListItem(m models.Measurement) MeasurementListItem {
	return MeasurementListItem{
		ID:        m.ID,
		Value:     m.Value,
		Timestamp: m.Timestamp,
		Sensor:    m.SensorID,
	}
}

// ToMeasurementListItems converts a slice of measurements to list
// projections.
func ToMeasurementListItems(measurements []models.Measurement) []MeasurementListItem {
	result := make([]MeasurementListItem, len(measurements))
	for i, m := range measurements {
		result[i] = ToMeasurementListItem(m)
	}
	return result
}

// ToMeasurementDetail converts a measurement to its full projection with
// the sensor embedded.
func ToMeasurementDetail(m *models.Measurement) MeasurementDetail {
	detail := MeasurementDetail{
		ID:        m.ID,
		Value:     m.Value,
		Timestamp: m.Timestamp,
	}
	if m.Sensor != nil {
		detail.Sensor = ToSensorDetail(m.Sensor)
	} else {
		detail.Sensor = SensorDetail{ID: m.SensorID}
	}
	return detail
}
