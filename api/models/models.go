package models

import (
	"encoding/json"
	"time"
)

// SignupRequest creates a new account. The password must be confirmed.
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Name            string `json:"name" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a freshly issued token. Expiry is omitted for
// non-expiring tokens.
type TokenResponse struct {
	Token  string     `json:"token"`
	Expiry *time.Time `json:"expiry,omitempty"`
}

// UserResponse is the caller's own profile. The staff flag is read-only.
type UserResponse struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsStaff bool   `json:"is_staff"`
}

// ProfileUpdateRequest partially updates the caller's profile. Owner and
// staff flags are not writable; unknown fields are ignored.
type ProfileUpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Name     *string `json:"name"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// LocationRequest creates or renames a location.
type LocationRequest struct {
	Name string `json:"name" binding:"required"`
}

// SensorTypeRequest creates a sensor type.
type SensorTypeRequest struct {
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit"`
}

// SensorTypeUpdateRequest partially updates a sensor type.
type SensorTypeUpdateRequest struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

// LocationRef is a nested location in a sensor payload, matched or created
// by name for the acting user.
type LocationRef struct {
	Name string `json:"name" binding:"required"`
}

// SensorTypeRef is a nested sensor type in a sensor payload, matched or
// created by name and unit for the acting user.
type SensorTypeRef struct {
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit"`
}

// OptionalLocationRef distinguishes an absent location field from an
// explicit null. Null clears the reference, absent leaves it unchanged.
type OptionalLocationRef struct {
	Set   bool
	Value *LocationRef
}

// UnmarshalJSON marks the field as present even when the payload is null.
func (o *OptionalLocationRef) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// OptionalSensorTypeRef distinguishes an absent sensor type field from an
// explicit null.
type OptionalSensorTypeRef struct {
	Set   bool
	Value *SensorTypeRef
}

// UnmarshalJSON marks the field as present even when the payload is null.
func (o *OptionalSensorTypeRef) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// SensorWriteRequest is the create/update payload for sensors. All fields
// are optional at the binding level; the handler enforces which ones are
// required per method.
type SensorWriteRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	SensorType  OptionalSensorTypeRef `json:"sensor_type"`
	Location    OptionalLocationRef   `json:"location"`
}

// SensorListItem is the compact list projection of a sensor.
type SensorListItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SensorTypeNested is a sensor type embedded in a sensor detail.
type SensorTypeNested struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// LocationNested is a location embedded in a sensor detail.
type LocationNested struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SensorDetail is the full projection of a sensor. Unset tag references
// serialize as null.
type SensorDetail struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	SensorType  *SensorTypeNested `json:"sensor_type"`
	Location    *LocationNested   `json:"location"`
}

// MeasurementWriteRequest is the create/update payload for measurements.
// The timestamp is never client-settable.
type MeasurementWriteRequest struct {
	Value  *float64 `json:"value"`
	Sensor *uint    `json:"sensor"`
}

// MeasurementListItem is the compact list projection of a measurement; the
// sensor appears as its id.
type MeasurementListItem struct {
	ID        uint      `json:"id"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Sensor    uint      `json:"sensor"`
}

// MeasurementDetail embeds the full sensor projection.
type MeasurementDetail struct {
	ID        uint         `json:"id"`
	Value     float64      `json:"value"`
	Timestamp time.Time    `json:"timestamp"`
	Sensor    SensorDetail `json:"sensor"`
}
