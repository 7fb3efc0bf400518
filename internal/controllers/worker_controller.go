package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kazi_connect/internal/config"
	"kazi_connect/internal/matching"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/models"
)

// updateWorkerInput defines the fields a client can send to update a worker's
// profile. Fields that belong to the User model are updated on the associated User.
type updateWorkerInput struct {
	UserName     *string `json:"name"`     // Optional: User's name
	UserEmail    *string `json:"email"`    // Optional: User's email
	UserPhone    *string `json:"phone"`    // Optional: User's general phone
	UserPassword *string `json:"password"` // Optional: User's password

	WorkerPhone       *string `json:"worker_phone"`
	Skill             *string `json:"skill"`
	ExperienceYears   *int    `json:"experience_years"`
	PreferredLocation *string `json:"preferred_location"`
	Status            *string `json:"status"` // available / assigned / inactive
}

// GetMyWorkerProfile fetches the worker record of the authenticated user.
func GetMyWorkerProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var worker models.Worker
	if err := config.DB.Preload("User").Where("user_id = ?", userID).First(&worker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Worker profile not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while fetching worker: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

// UpdateMyWorkerProfile updates the authenticated worker's profile and the
// associated user record in one transaction.
func UpdateMyWorkerProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var input updateWorkerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body format: " + err.Error()})
		return
	}

	var worker models.Worker
	if err := config.DB.Preload("User").Where("user_id = ?", userID).First(&worker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Worker profile not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while fetching worker: " + err.Error()})
		return
	}

	tx := config.DB.Begin()

	user := worker.User
	if input.UserName != nil {
		user.Name = *input.UserName
		worker.Name = *input.UserName
	}
	if input.UserEmail != nil {
		user.Email = *input.UserEmail
	}
	if input.UserPhone != nil {
		user.Phone = *input.UserPhone
	}
	if input.UserPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.UserPassword), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}
		user.Password = string(hash)
	}
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user: " + err.Error()})
		return
	}

	if input.WorkerPhone != nil {
		worker.Phone = *input.WorkerPhone
	}
	if input.Skill != nil {
		worker.Skill = *input.Skill
	}
	if input.ExperienceYears != nil {
		worker.ExperienceYears = *input.ExperienceYears
	}
	if input.PreferredLocation != nil {
		worker.PreferredLocation = *input.PreferredLocation
	}
	if input.Status != nil {
		switch *input.Status {
		case models.WorkerStatusAvailable, models.WorkerStatusAssigned, models.WorkerStatusInactive:
			worker.Status = *input.Status
		default:
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid worker status."})
			return
		}
	}
	worker.User = user
	if err := tx.Save(&worker).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update worker: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

// ListWorkers lists all workers. Administrative use.
func ListWorkers(c *gin.Context) {
	var workers []models.Worker
	if err := config.DB.Preload("User").Find(&workers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing workers: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": workers})
}

// GetWorker retrieves a single worker by ID. Administrative use.
func GetWorker(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid worker ID format"})
		return
	}

	var worker models.Worker
	if err := config.DB.Preload("User").First(&worker, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Worker not found"})
			return
		}
		logrus.WithError(err).Error("Error fetching worker from database")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worker data."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

// ListMyAssignments returns the authenticated worker's assignments with their
// job requests.
func ListMyAssignments(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var worker models.Worker
	if err := config.DB.Where("user_id = ?", userID).First(&worker).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worker profile not found."})
		return
	}

	var assignments []models.Assignment
	if err := config.DB.Where("worker_id = ?", worker.ID).Order("created_at desc").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing assignments: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// ListMatchingRequests returns open (approved) job requests whose required
// skill matches the authenticated worker's skill.
func ListMatchingRequests(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var worker models.Worker
	if err := config.DB.Where("user_id = ?", userID).First(&worker).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worker profile not found."})
		return
	}

	var requests []models.JobRequest
	if err := config.DB.Where("status = ?", models.RequestStatusApproved).Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing job requests: " + err.Error()})
		return
	}

	matched := make([]models.JobRequest, 0)
	for _, req := range requests {
		if matching.Matches(worker.Skill, req.RequiredSkill) {
			matched = append(matched, req)
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": matched})
}
