package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"kazi_connect/internal/config"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/models"
)

// notifyUser persists a notification for the recipient. Failures are logged
// and swallowed: notifications are best-effort and must never fail the
// operation that produced them.
func notifyUser(userID uint, kind, title, message string) {
	n := models.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	}
	if err := config.DB.Create(&n).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    kind,
		}).Error("Failed to persist notification.")
	}
}

// notifyAdmins fans a notification out to every admin user.
func notifyAdmins(kind, title, message string) {
	var admins []models.User
	if err := config.DB.Where("role = ?", "admin").Find(&admins).Error; err != nil {
		logrus.WithError(err).Error("Failed to list admins for notification fan-out.")
		return
	}
	for _, admin := range admins {
		notifyUser(admin.ID, kind, title, message)
	}
}

// ListMyNotifications returns the authenticated user's notifications, newest
// first.
func ListMyNotifications(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var notifications []models.Notification
	if err := config.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// ListMyUnreadNotifications returns only unread notifications.
func ListMyUnreadNotifications(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var notifications []models.Notification
	if err := config.DB.Where("user_id = ? AND read = ?", userID, false).
		Order("created_at desc").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// MarkNotificationRead flags one of the caller's notifications as read.
// Unknown ids answer 200 with updated=0 rather than an error.
func MarkNotificationRead(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	res := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification: " + res.Error.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}
