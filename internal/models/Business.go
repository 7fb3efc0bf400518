// internal/models/business.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Business represents an employer entity that requests workers
// through job requests reviewed by an admin.
type Business struct {
	gorm.Model
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex" json:"user_id"`

	Name     string `json:"name" binding:"required"`
	Owner    string `json:"owner" binding:"required"`
	Email    string `gorm:"unique;not null" json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Industry string `json:"industry"`

	JobRequests []JobRequest `gorm:"foreignKey:BusinessID" json:"job_requests,omitempty"`
}
