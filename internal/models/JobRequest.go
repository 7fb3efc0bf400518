package models

import (
	"gorm.io/gorm"
)

// Job request statuses as the request moves through the admin workflow.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusAssigned  = "assigned"
	RequestStatusCompleted = "completed"
	RequestStatusRejected  = "rejected"
)

// JobRequest represents a business asking for workers with a given skill.
// A request is created by a business, approved/rejected by an admin, and
// filled through Assignment records.
type JobRequest struct {
	gorm.Model

	BusinessID    uint   `json:"business_id" gorm:"index"`
	Business      Business `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	Title         string `json:"title" binding:"required"`
	RequiredSkill string `json:"required_skill"` // Free text, matched against Worker.Skill
	Description   string `json:"description"`
	WorkersNeeded int    `json:"workers_needed" gorm:"default:1"`
	Location      string `json:"location"`
	WageOffer     string `json:"wage_offer"`
	Status        string `json:"status" gorm:"default:pending"`

	Assignments []Assignment `gorm:"foreignKey:JobRequestID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"assignments,omitempty"`
}
