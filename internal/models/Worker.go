// internal/models/worker.go
package models

import (
	"gorm.io/gorm"
)

// Worker statuses used across assignment and tracking flows.
const (
	WorkerStatusAvailable = "available"
	WorkerStatusAssigned  = "assigned"
	WorkerStatusInactive  = "inactive"
)

type Worker struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"unique"` // Foreign key to User
	User   User `gorm:"foreignKey:UserID"`     // User association

	Name              string `json:"name"`  // Worker's specific name (if different from User.Name)
	Phone             string `json:"phone"` // Worker's specific phone (if different from User.Phone)
	Skill             string `json:"skill"` // Free text, e.g. "Carpenter", "Farm labourer"
	ExperienceYears   int    `json:"experience_years"`
	PreferredLocation string `json:"preferred_location"`
	IDNumber          string `json:"id_number"`
	Status            string `json:"status" gorm:"default:available"` // available / assigned / inactive
	// DO NOT include Email, Password, or Role here. They are in the User model.
}
