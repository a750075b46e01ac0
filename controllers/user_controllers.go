package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/middlewares"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB   *gorm.DB
	JWT  *utils.JWTManager
	Apps *services.AppRegistry
}

func NewUserController(db *gorm.DB, jwtManager *utils.JWTManager, apps *services.AppRegistry) *UserController {
	return &UserController{DB: db, JWT: jwtManager, Apps: apps}
}

// Register customer baru. Role staff/admin hanya lewat seed atau admin.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6"`
		Phone        string `json:"phone"`
		IsHKSTPStaff bool   `json:"is_hkstp_staff"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Password:     string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleCustomer,
		IsHKSTPStaff: req.IsHKSTPStaff,
	}

	var existing int64
	uc.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing)
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("email already registered"))
		return
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.ErrorLogger.Printf("Error registering %s: %v", user.Email, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login -> return JWT. Jika X-Device-ID ada, AppContext device ikut terikat ke user.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := uc.JWT.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if deviceID := strings.TrimSpace(c.GetHeader(middlewares.DeviceHeader)); deviceID != "" {
		uc.Apps.Get(deviceID).SignIn(&user)
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": strings.ToLower(user.Role),
		"user":      user,
	})
}

// Logout mem-blacklist token dan melepas user dari AppContext device.
func (uc *UserController) Logout(c *gin.Context) {
	uc.JWT.BlacklistToken(c.GetString(middlewares.ContextToken))

	// semua device yang terikat ke user dilepas, dengan atau tanpa header device.
	// Sesi meja dan keranjang device tetap.
	signedOut := uc.Apps.SignOutUser(c.GetString(middlewares.ContextUserID))
	utils.InfoLogger.Printf("User %s logged out from %d device(s)", c.GetString(middlewares.ContextUserID), signedOut)

	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile -> user dari JWT, termasuk poin loyalitas
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// GetAllUsers -> khusus admin (RoleCheck di router)
func (uc *UserController) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Order("created_at desc").Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All users", users)
}
