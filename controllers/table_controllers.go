package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cuetracker/billiard-app/floor"
	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/services"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> registers a new billiard table on the floor
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name       string  `json:"name" binding:"required"`
		HourlyRate float64 `json:"hourly_rate" binding:"required"`
		Status     string  `json:"status"` // optional, default "available"
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.HourlyRate < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("hourly_rate must not be negative"))
		return
	}

	table := models.Table{
		Name:       req.Name,
		HourlyRate: req.HourlyRate,
		Status:     models.TableAvailable,
	}
	if req.Status != "" {
		if req.Status != models.TableAvailable && req.Status != models.TableOutOfService {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("new table status must be %s or %s", models.TableAvailable, models.TableOutOfService))
			return
		}
		table.Status = req.Status
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	floor.BroadcastTableCreate(table)
	floor.BroadcastDashboardUpdate(tc.getFloorStats())

	utils.InfoLogger.Printf("New table created: %s (rate=%.2f/hr)", table.Name, table.HourlyRate)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> lists every table with its live elapsed time and running bill
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Preload("SessionItems").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	views := make([]gin.H, 0, len(tables))
	for i := range tables {
		views = append(views, tableView(&tables[i], now))
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

// GetTableByID -> single table with live session detail
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.Preload("SessionItems").Preload("SessionItems.Product").
		First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %s not found", tableID))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table detail", tableView(&table, time.Now()))
}

// UpdateTable -> rename a table or change its hourly rate.
// Rate changes apply from the next session; a running session keeps
// billing at whatever rate the row holds when the bill is cut.
func (tc *TableController) UpdateTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var req struct {
		Name       *string  `json:"name"`
		HourlyRate *float64 `json:"hourly_rate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %s not found", tableID))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("hourly_rate must not be negative"))
			return
		}
		updates["hourly_rate"] = *req.HourlyRate
	}
	if len(updates) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Nothing to update", table)
		return
	}

	if err := tc.DB.Model(&table).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	floor.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

// SetTableStatus -> flips a table between available and out-of-service.
// Session transitions (in-use, paused) go through the session endpoints,
// never through here.
func (tc *TableController) SetTableStatus(c *gin.Context) {
	tableID := c.Param("table_id")
	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Status != models.TableAvailable && req.Status != models.TableOutOfService {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("status must be %s or %s", models.TableAvailable, models.TableOutOfService))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %s not found", tableID))
		return
	}

	switch table.Status {
	case models.TableInUse, models.TablePaused:
		utils.RespondError(c, http.StatusConflict,
			errors.New("table has an active session; checkout before changing its status"))
		return
	}

	if table.Status == req.Status {
		utils.RespondJSON(c, http.StatusOK, "Table already in requested status", table)
		return
	}

	if err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&table).Update("status", req.Status).Error; err != nil {
			return err
		}
		if req.Status == models.TableOutOfService {
			return tx.Create(&models.MaintenanceLog{
				TableID: table.ID,
				StaffID: currentUserID(c),
				Status:  models.MaintenanceOpen,
				Reason:  req.Reason,
			}).Error
		}
		// back in service: close any open maintenance log
		return tx.Model(&models.MaintenanceLog{}).
			Where("table_id = ? AND status = ?", table.ID, models.MaintenanceOpen).
			Update("status", models.MaintenanceClosed).Error
	}); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	table.Status = req.Status
	floor.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %s status changed to %s", table.Name, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> removes a table that has no running session
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %s not found", tableID))
		return
	}

	switch table.Status {
	case models.TableInUse, models.TablePaused:
		utils.RespondError(c, http.StatusConflict,
			errors.New("table has an active session and cannot be deleted"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	floor.BroadcastTableDelete(table)
	floor.BroadcastDashboardUpdate(tc.getFloorStats())

	utils.InfoLogger.Printf("Table deleted: %s", table.Name)
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", nil)
}

// tableView augments the stored row with the derived session figures the
// floor screen renders: live elapsed seconds and the running bill split.
func tableView(table *models.Table, now time.Time) gin.H {
	elapsed := services.DisplayedElapsed(table, now)
	bill := services.ComputeBill(table.HourlyRate, elapsed, table.SessionItems)
	return gin.H{
		"table":           table,
		"elapsed_seconds": elapsed,
		"elapsed_display": services.FormatDuration(elapsed),
		"table_bill":      bill.TableBill,
		"items_bill":      bill.ItemsBill,
		"total":           bill.Total,
	}
}

func (tc *TableController) getFloorStats() map[string]interface{} {
	var available, inUse, paused, outOfService int64
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableAvailable).Count(&available)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableInUse).Count(&inUse)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TablePaused).Count(&paused)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableOutOfService).Count(&outOfService)

	return map[string]interface{}{
		"available":      available,
		"in_use":         inUse,
		"paused":         paused,
		"out_of_service": outOfService,
	}
}
