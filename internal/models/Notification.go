package models

import (
	"gorm.io/gorm"
)

// Notification kinds. Geofence-derived kinds mirror geofence alert kinds so
// tracker alerts can be persisted for their recipients without translation.
const (
	NotificationRequestApproved = "request_approved"
	NotificationRequestRejected = "request_rejected"
	NotificationWorkerAssigned  = "worker_assigned"
	NotificationZoneEntry       = "zone_entry"
	NotificationZoneExit        = "zone_exit"
	NotificationSOS             = "sos"
	NotificationInactivity      = "inactivity"
)

type Notification struct {
	gorm.Model

	UserID  uint   `json:"user_id" gorm:"index"` // recipient
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Read    bool   `json:"read" gorm:"default:false"`
}
