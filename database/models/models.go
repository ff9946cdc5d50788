package models

import "time"

// User is an account in the system. Users own every other entity
// transitively and are never hard-deleted in normal operation.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// AuthToken maps an opaque credential to a user. Only the SHA-256 digest of
// the token is stored; the raw token is returned once at issue time.
// TokenKey keeps the first characters of the raw token for log correlation.
// A nil ExpiresAt means the token never expires.
type AuthToken struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"index;not null"`
	Digest    string     `gorm:"uniqueIndex;not null"`
	TokenKey  string     `gorm:"index;not null"`
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Location is a named place a sensor can be mounted at. Names are not
// unique, not even per user.
type Location struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"-"`
	Name   string `gorm:"not null" json:"name"`

	// IsAssigned is true if at least one of the owner's sensors references
	// this location. Annotated by the list query, not a stored column.
	IsAssigned bool `gorm:"->;-:migration" json:"is_assigned"`
}

// SensorType describes what a sensor measures, e.g. name "Temperature" with
// unit "°C". The unit may be empty.
type SensorType struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"-"`
	Name   string `gorm:"not null" json:"name"`
	Unit   string `json:"unit"`

	IsAssigned bool `gorm:"->;-:migration" json:"is_assigned"`
}

// Sensor is a registered device. The sensor type and location references are
// optional and detach (become nil) when the referenced row is deleted.
type Sensor struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"index;not null" json:"-"`
	Name         string      `gorm:"not null" json:"name"`
	Description  string      `json:"description"`
	SensorTypeID *uint       `gorm:"index" json:"-"`
	SensorType   *SensorType `json:"sensor_type,omitempty"`
	LocationID   *uint       `gorm:"index" json:"-"`
	Location     *Location   `json:"location,omitempty"`
}

// Measurement is a single reading of a sensor. The timestamp is assigned by
// the server at insert time and immutable afterwards. Deleting the sensor
// deletes its measurements.
type Measurement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Value     float64   `gorm:"type:decimal(10,2);not null" json:"value"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	SensorID  uint      `gorm:"index;not null" json:"sensor"`
	Sensor    *Sensor   `json:"-"`
}
