package controllers

import (
	"fmt"
	"net/http"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MaintenanceLogController struct {
	DB *gorm.DB
}

func NewMaintenanceLogController(db *gorm.DB) *MaintenanceLogController {
	return &MaintenanceLogController{DB: db}
}

// GetAllLogs -> maintenance history, optionally filtered by
// ?status=open|closed and ?table_id=
func (mc *MaintenanceLogController) GetAllLogs(c *gin.Context) {
	query := mc.DB.Preload("Table").Preload("Staff").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}

	var logs []models.MaintenanceLog
	if err := query.Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of maintenance logs", logs)
}

// GetLogByID
func (mc *MaintenanceLogController) GetLogByID(c *gin.Context) {
	logID := c.Param("log_id")

	var log models.MaintenanceLog
	if err := mc.DB.Preload("Table").Preload("Staff").First(&log, logID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("maintenance log %s not found", logID))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance log detail", log)
}

// UpdateLogReason -> amends the reason text on an open log
func (mc *MaintenanceLogController) UpdateLogReason(c *gin.Context) {
	logID := c.Param("log_id")
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var log models.MaintenanceLog
	if err := mc.DB.First(&log, logID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("maintenance log %s not found", logID))
		return
	}
	if log.Status != models.MaintenanceOpen {
		utils.RespondError(c, http.StatusConflict, fmt.Errorf("maintenance log %s is closed", logID))
		return
	}

	if err := mc.DB.Model(&log).Update("reason", req.Reason).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance log updated", log)
}
