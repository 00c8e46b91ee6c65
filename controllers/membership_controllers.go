package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MembershipController struct {
	DB *gorm.DB
}

func NewMembershipController(db *gorm.DB) *MembershipController {
	return &MembershipController{DB: db}
}

// CreateMembership -> defines a new plan (name, hours bundle, price)
func (mc *MembershipController) CreateMembership(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		TotalHours  float64 `json:"total_hours" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TotalHours <= 0 || req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("total_hours must be positive and price must not be negative"))
		return
	}

	plan := models.Membership{
		Name:        req.Name,
		Description: req.Description,
		TotalHours:  req.TotalHours,
		Price:       req.Price,
	}
	if err := mc.DB.Create(&plan).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Membership plan created: %s (%.1f hours)", plan.Name, plan.TotalHours)
	utils.RespondJSON(c, http.StatusCreated, "Membership plan created", plan)
}

// GetAllMemberships
func (mc *MembershipController) GetAllMemberships(c *gin.Context) {
	var plans []models.Membership
	if err := mc.DB.Find(&plans).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of membership plans", plans)
}

// UpdateMembership -> edits a plan; customers already on it keep the
// hours they were granted at assignment time.
func (mc *MembershipController) UpdateMembership(c *gin.Context) {
	planID := c.Param("membership_id")
	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		TotalHours  *float64 `json:"total_hours"`
		Price       *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var plan models.Membership
	if err := mc.DB.First(&plan, planID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("membership plan %s not found", planID))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TotalHours != nil {
		if *req.TotalHours <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("total_hours must be positive"))
			return
		}
		updates["total_hours"] = *req.TotalHours
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
			return
		}
		updates["price"] = *req.Price
	}
	if len(updates) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Nothing to update", plan)
		return
	}

	if err := mc.DB.Model(&plan).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Membership plan updated", plan)
}

// DeleteMembership -> refused while customers still hold the plan
func (mc *MembershipController) DeleteMembership(c *gin.Context) {
	planID := c.Param("membership_id")

	var plan models.Membership
	if err := mc.DB.First(&plan, planID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("membership plan %s not found", planID))
		return
	}

	var holders int64
	if err := mc.DB.Model(&models.Customer{}).
		Where("membership_id = ?", plan.ID).Count(&holders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if holders > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("membership plan still has holders"))
		return
	}

	if err := mc.DB.Delete(&plan).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Membership plan deleted", nil)
}
