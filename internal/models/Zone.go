package models

import (
	"time"

	"gorm.io/gorm"
)

// Zone is the persisted mirror of a geofence zone. The authoritative runtime
// copy lives in the geofence tracker; this row survives restarts.
// Center is stored as a WKB POINT (SRID 4326); the API speaks GeoJSON.
type Zone struct {
	ID        string         `gorm:"primaryKey" json:"id"` // uuid assigned by the tracker
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string  `json:"name" binding:"required"`
	Kind         string  `json:"kind"` // "work", "restricted", "safe"
	Description  string  `json:"description"`
	RadiusMeters float64 `json:"radius_meters"`

	Center []byte `gorm:"type:bytea" json:"-"`
}
