package models

import (
	"time"

	"gorm.io/gorm"
)

type LocationHistory struct {
	gorm.Model
	WorkerID         uint    `json:"worker_id" gorm:"index"`
	Worker           Worker  `gorm:"foreignKey:WorkerID"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Accuracy         float64 `json:"accuracy"` // GPS accuracy in meters
	Speed            float64 `json:"speed"`    // Speed in m/s
	IsMoving         bool    `json:"is_moving"`
	DistanceFromLast float64 `json:"distance_from_last"` // Distance from previous point
	Timestamp        time.Time `json:"timestamp"`
	EventType        string    `json:"event_type"` // "initial", "move", "stopped", "started", "periodic"
}
