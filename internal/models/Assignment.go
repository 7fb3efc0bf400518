package models

import (
	"gorm.io/gorm"
)

const (
	AssignmentStatusActive    = "active"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusCancelled = "cancelled"
)

// Assignment links a worker to a job request. AssignedBy records the admin
// user who made the placement.
type Assignment struct {
	gorm.Model

	JobRequestID uint   `json:"job_request_id" gorm:"index"`
	WorkerID     uint   `json:"worker_id" gorm:"index"`
	Worker       Worker `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	AssignedBy   uint   `json:"assigned_by"` // admin User ID
	Status       string `json:"status" gorm:"default:active"`
}
