package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kazi_connect/internal/config"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/models"
)

// GetMyBusiness retrieves the business profile of the authenticated user,
// with its job requests.
func GetMyBusiness(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var business models.Business
	if err := config.DB.Preload("JobRequests").Where("user_id = ?", userID).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business})
}

// GetBusiness retrieves a Business by ID. Administrative use.
func GetBusiness(c *gin.Context) {
	id := c.Param("id")
	var business models.Business
	if err := config.DB.Preload("JobRequests").First(&business, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business})
}

// ListBusinesses lists all businesses. Administrative use.
func ListBusinesses(c *gin.Context) {
	var businesses []models.Business
	if err := config.DB.Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch businesses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": businesses})
}

// UpdateMyBusiness modifies the authenticated user's business profile.
func UpdateMyBusiness(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var business models.Business
	if err := config.DB.Where("user_id = ?", userID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var input struct {
		Name     *string `json:"name"`
		Owner    *string `json:"owner"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Address  *string `json:"address"`
		Industry *string `json:"industry"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		business.Name = *input.Name
	}
	if input.Owner != nil {
		business.Owner = *input.Owner
	}
	if input.Email != nil {
		business.Email = *input.Email
	}
	if input.Phone != nil {
		business.Phone = *input.Phone
	}
	if input.Address != nil {
		business.Address = *input.Address
	}
	if input.Industry != nil {
		business.Industry = *input.Industry
	}

	config.DB.Save(&business)
	c.JSON(http.StatusOK, gin.H{"business": business})
}
