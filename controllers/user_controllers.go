package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register -> creates a staff account. Role defaults to staff; only the
// admin routes expose this handler so the caller is already an admin.
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := models.RoleStaff
	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleStaff {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("role must be %s or %s", models.RoleAdmin, models.RoleStaff))
			return
		}
		role = req.Role
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(req.Email)).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Password: string(hashed),
		Role:     role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff account created: %s (%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered successfully", user)
}

// Login -> verifies credentials and issues a JWT
func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User logged in: %s", user.Email)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout -> blacklists the presented token for the rest of its lifetime
func (uc *UserController) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing bearer token"))
		return
	}

	utils.BlacklistToken(token)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Profile -> the authenticated user's own record
func (uc *UserController) Profile(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User profile", user)
}

// GetAllUsers -> admin listing of staff accounts
func (uc *UserController) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}

// UpdateUser -> admin edit of name, role or password
func (uc *UserController) UpdateUser(c *gin.Context) {
	userID := c.Param("user_id")
	var req struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("user %s not found", userID))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleStaff {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("role must be %s or %s", models.RoleAdmin, models.RoleStaff))
			return
		}
		updates["role"] = *req.Role
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("password must be at least 8 characters"))
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		updates["password"] = string(hashed)
	}
	if len(updates) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Nothing to update", user)
		return
	}

	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser -> removes a staff account; admins cannot delete themselves
func (uc *UserController) DeleteUser(c *gin.Context) {
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return
	}

	if userID == currentUserID(c) {
		utils.RespondError(c, http.StatusConflict, errors.New("cannot delete your own account"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("user %d not found", userID))
		return
	}

	if err := uc.DB.Delete(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff account deleted: %s", user.Email)
	utils.RespondJSON(c, http.StatusOK, "User deleted successfully", nil)
}
