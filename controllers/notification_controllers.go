package controllers

import (
	"fmt"
	"net/http"

	"github.com/cuetracker/billiard-app/floor"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// CreateNotification -> posts a message to the floor screens and stores it
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var req struct {
		UserID  *uint   `json:"user_id"`
		Title   *string `json:"title"`
		Message string  `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notification := models.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
	}
	if err := nc.DB.Create(&notification).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	floor.BroadcastStaffNotification(notification.Message)
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notification)
}

// GetAllNotifications -> newest first, capped at 100
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	var notifications []models.Notification
	if err := nc.DB.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifications)
}

// DeleteNotification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	notificationID := c.Param("notification_id")

	var notification models.Notification
	if err := nc.DB.First(&notification, notificationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("notification %s not found", notificationID))
		return
	}

	if err := nc.DB.Delete(&notification).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", nil)
}
