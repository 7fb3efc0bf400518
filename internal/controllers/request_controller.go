package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"kazi_connect/internal/config"
	"kazi_connect/internal/matching"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/models"
)

// CreateJobRequest allows a business to ask for workers with a given skill.
// The request starts pending and must be approved by an admin before
// assignment.
func CreateJobRequest(c *gin.Context) {
	var input struct {
		Title         string `json:"title" binding:"required"`
		RequiredSkill string `json:"required_skill"`
		Description   string `json:"description"`
		WorkersNeeded int    `json:"workers_needed"`
		Location      string `json:"location"`
		WageOffer     string `json:"wage_offer"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateJobRequest: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	userID := middleware.UserIDFromContext(c)
	var business models.Business
	if err := config.DB.Where("user_id = ?", userID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business profile not found."})
		return
	}

	if input.WorkersNeeded <= 0 {
		input.WorkersNeeded = 1
	}

	request := models.JobRequest{
		BusinessID:    business.ID,
		Title:         input.Title,
		RequiredSkill: input.RequiredSkill,
		Description:   input.Description,
		WorkersNeeded: input.WorkersNeeded,
		Location:      input.Location,
		WageOffer:     input.WageOffer,
		Status:        models.RequestStatusPending,
	}
	if err := config.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create job request: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// ListMyRequests returns the authenticated business's job requests with
// their assignments.
func ListMyRequests(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var business models.Business
	if err := config.DB.Where("user_id = ?", userID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business profile not found."})
		return
	}

	var requests []models.JobRequest
	if err := config.DB.Preload("Assignments").Preload("Assignments.Worker").
		Where("business_id = ?", business.ID).Order("created_at desc").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing requests: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": requests})
}

// CancelMyRequest lets a business withdraw a request that has not been
// approved yet.
func CancelMyRequest(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var business models.Business
	if err := config.DB.Where("user_id = ?", userID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business profile not found."})
		return
	}

	id := c.Param("id")
	var request models.JobRequest
	if err := config.DB.Where("id = ? AND business_id = ?", id, business.ID).First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job request not found"})
		return
	}

	if request.Status != models.RequestStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Only pending requests can be cancelled."})
		return
	}

	if err := config.DB.Delete(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

// ListAllRequests lists every job request. Administrative use.
func ListAllRequests(c *gin.Context) {
	var requests []models.JobRequest
	query := config.DB.Preload("Business").Preload("Assignments").Preload("Assignments.Worker")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at desc").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing requests: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requests})
}

// reviewInput carries the optional note an admin attaches to a decision.
type reviewInput struct {
	Note string `json:"note"`
}

// ApproveRequest moves a pending request to approved and notifies the
// business.
func ApproveRequest(c *gin.Context) {
	reviewRequest(c, models.RequestStatusApproved, models.NotificationRequestApproved, "Your job request %q was approved")
}

// RejectRequest moves a pending request to rejected and notifies the
// business.
func RejectRequest(c *gin.Context) {
	reviewRequest(c, models.RequestStatusRejected, models.NotificationRequestRejected, "Your job request %q was rejected")
}

func reviewRequest(c *gin.Context, newStatus, notificationKind, messageFormat string) {
	id := c.Param("id")
	var request models.JobRequest
	if err := config.DB.Preload("Business").First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job request not found"})
		return
	}

	if request.Status != models.RequestStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Request has already been reviewed."})
		return
	}

	var input reviewInput
	// body is optional
	_ = c.ShouldBindJSON(&input)

	request.Status = newStatus
	if err := config.DB.Save(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request: " + err.Error()})
		return
	}

	message := fmt.Sprintf(messageFormat, request.Title)
	if input.Note != "" {
		message += ": " + input.Note
	}
	notifyUser(request.Business.UserID, notificationKind, "Request reviewed", message)

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// ListCandidates returns available workers whose skill matches the request's
// required skill, for the admin assignment screen.
func ListCandidates(c *gin.Context) {
	id := c.Param("id")
	var request models.JobRequest
	if err := config.DB.First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job request not found"})
		return
	}

	var workers []models.Worker
	if err := config.DB.Preload("User").Where("status = ?", models.WorkerStatusAvailable).Find(&workers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing workers: " + err.Error()})
		return
	}

	candidates := make([]models.Worker, 0)
	for _, w := range workers {
		if matching.Matches(w.Skill, request.RequiredSkill) {
			candidates = append(candidates, w)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": candidates})
}

// AssignWorker places a worker on an approved request, flips the worker's
// status, and notifies both the worker and the business. When the request has
// enough active assignments it moves to assigned.
func AssignWorker(c *gin.Context) {
	adminID := middleware.UserIDFromContext(c)

	id := c.Param("id")
	var input struct {
		WorkerID uint `json:"worker_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var request models.JobRequest
	if err := config.DB.Preload("Business").First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job request not found"})
		return
	}
	if request.Status != models.RequestStatusApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "Workers can only be assigned to approved requests."})
		return
	}

	var worker models.Worker
	if err := config.DB.First(&worker, input.WorkerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Worker not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	if worker.Status != models.WorkerStatusAvailable {
		c.JSON(http.StatusConflict, gin.H{"error": "Worker is not available."})
		return
	}

	if !matching.Matches(worker.Skill, request.RequiredSkill) {
		logrus.WithFields(logrus.Fields{
			"worker_id":      worker.ID,
			"request_id":     request.ID,
			"worker_skill":   worker.Skill,
			"required_skill": request.RequiredSkill,
		}).Warn("Assigning worker whose skill does not match the request.")
	}

	tx := config.DB.Begin()

	assignment := models.Assignment{
		JobRequestID: request.ID,
		WorkerID:     worker.ID,
		AssignedBy:   adminID,
		Status:       models.AssignmentStatusActive,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignment: " + err.Error()})
		return
	}

	worker.Status = models.WorkerStatusAssigned
	if err := tx.Save(&worker).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update worker: " + err.Error()})
		return
	}

	var active int64
	if err := tx.Model(&models.Assignment{}).
		Where("job_request_id = ? AND status = ?", request.ID, models.AssignmentStatusActive).
		Count(&active).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count assignments: " + err.Error()})
		return
	}
	if active >= int64(request.WorkersNeeded) {
		request.Status = models.RequestStatusAssigned
		if err := tx.Save(&request).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request: " + err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	notifyUser(worker.UserID, models.NotificationWorkerAssigned,
		"New assignment",
		fmt.Sprintf("You have been assigned to %q at %s", request.Title, request.Business.Name))
	notifyUser(request.Business.UserID, models.NotificationWorkerAssigned,
		"Worker assigned",
		fmt.Sprintf("%s has been assigned to your request %q", worker.Name, request.Title))

	c.JSON(http.StatusCreated, gin.H{"assignment": assignment, "request": request})
}

// CompleteRequest closes out an assigned request: its active assignments are
// completed and the workers become available again.
func CompleteRequest(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID format"})
		return
	}

	var request models.JobRequest
	if err := config.DB.First(&request, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job request not found"})
		return
	}
	if request.Status != models.RequestStatusAssigned && request.Status != models.RequestStatusApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "Only approved or assigned requests can be completed."})
		return
	}

	tx := config.DB.Begin()

	var assignments []models.Assignment
	if err := tx.Where("job_request_id = ? AND status = ?", request.ID, models.AssignmentStatusActive).
		Find(&assignments).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load assignments: " + err.Error()})
		return
	}

	for i := range assignments {
		assignments[i].Status = models.AssignmentStatusCompleted
		if err := tx.Save(&assignments[i]).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment: " + err.Error()})
			return
		}
		if err := tx.Model(&models.Worker{}).Where("id = ?", assignments[i].WorkerID).
			Update("status", models.WorkerStatusAvailable).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release worker: " + err.Error()})
			return
		}
	}

	request.Status = models.RequestStatusCompleted
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}
