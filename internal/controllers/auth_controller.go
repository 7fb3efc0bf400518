package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kazi_connect/internal/config"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/models"
)

type signupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	// worker fields
	Skill             string `json:"skill"`
	ExperienceYears   int    `json:"experience_years"`
	PreferredLocation string `json:"preferred_location"`
	IDNumber          string `json:"id_number"`
	WorkerPhone       string `json:"worker_phone"`

	// business fields
	BusinessName  string `json:"business_name"`
	BusinessOwner string `json:"business_owner"`
	Industry      string `json:"industry"`
	Address       string `json:"address"`
}

func SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Role = role

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	user, err := createUserRecord(tx, input, hashedPassword)
	if err != nil {
		tx.Rollback()
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	err = createActorRecord(tx, &user, input)
	if err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "required for worker role") ||
			strings.Contains(err.Error(), "required for business role") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create actor record: " + err.Error()})
		}
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

func LoginUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := config.DB.Where("email = ?", body.Email).
		Preload("Worker").
		Preload("Business")

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = "worker"
	}
	switch role {
	case "worker", "business", "admin":
		return role, nil
	default:
		return "", errors.New("invalid role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func createUserRecord(tx *gorm.DB, input signupInput, hashedPassword string) (models.User, error) {
	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Phone:    input.Phone,
		Role:     input.Role,
	}
	if err := tx.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func createActorRecord(tx *gorm.DB, user *models.User, input signupInput) error {
	switch user.Role {
	case "worker":
		if input.Skill == "" {
			return errors.New("skill is required for worker role")
		}

		worker := models.Worker{
			UserID:            user.ID,
			Name:              input.Name,
			Phone:             input.WorkerPhone,
			Skill:             input.Skill,
			ExperienceYears:   input.ExperienceYears,
			PreferredLocation: input.PreferredLocation,
			IDNumber:          input.IDNumber,
			Status:            models.WorkerStatusAvailable,
		}
		if err := tx.Create(&worker).Error; err != nil {
			return err
		}
		user.Worker = &worker
		if err := tx.Save(user).Error; err != nil {
			return err
		}
	case "business":
		if input.BusinessName == "" || input.BusinessOwner == "" {
			return errors.New("business_name and business_owner are required for business role")
		}

		business := models.Business{
			UserID:   user.ID,
			Name:     input.BusinessName,
			Owner:    input.BusinessOwner,
			Email:    input.Email,
			Phone:    input.Phone,
			Address:  input.Address,
			Industry: input.Industry,
		}
		if err := tx.Create(&business).Error; err != nil {
			return err
		}
		user.Business = &business
		if err := tx.Save(user).Error; err != nil {
			return err
		}
	}
	return nil
}

func prepareUserResponse(user models.User) gin.H {
	responseUser := gin.H{
		"ID":        user.ID,
		"CreatedAt": user.CreatedAt,
		"UpdatedAt": user.UpdatedAt,
		"name":      user.Name,
		"email":     user.Email,
		"phone":     user.Phone,
		"role":      user.Role,
	}

	if user.Worker != nil {
		responseUser["worker"] = gin.H{
			"ID":                 user.Worker.ID,
			"name":               user.Worker.Name,
			"phone":              user.Worker.Phone,
			"skill":              user.Worker.Skill,
			"experience_years":   user.Worker.ExperienceYears,
			"preferred_location": user.Worker.PreferredLocation,
			"status":             user.Worker.Status,
		}
		responseUser["worker_id"] = user.Worker.ID
	}
	if user.Business != nil {
		responseUser["business"] = gin.H{
			"ID":       user.Business.ID,
			"name":     user.Business.Name,
			"owner":    user.Business.Owner,
			"email":    user.Business.Email,
			"phone":    user.Business.Phone,
			"industry": user.Business.Industry,
		}
		responseUser["business_id"] = user.Business.ID
	}
	return responseUser
}
