package controllers

import (
	"net/http"
	"time"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/services"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// DashboardStats -> the numbers on the admin landing screen: floor
// occupancy, today's revenue, open tabs and low-stock products.
func (ac *AdminController) DashboardStats(c *gin.Context) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var available, inUse, paused, outOfService int64
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableAvailable).Count(&available)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableInUse).Count(&inUse)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TablePaused).Count(&paused)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableOutOfService).Count(&outOfService)

	var today struct {
		Total        float64
		Transactions int64
	}
	if err := ac.DB.Model(&models.Bill{}).
		Select("COALESCE(SUM(total_amount),0) AS total, COUNT(*) AS transactions").
		Where("bill_date >= ?", dayStart).
		Scan(&today).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// running value of the open tabs on the floor
	var openTables []models.Table
	if err := ac.DB.Preload("SessionItems").
		Where("status IN ?", []string{models.TableInUse, models.TablePaused}).
		Find(&openTables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	var openTabsValue float64
	for i := range openTables {
		elapsed := services.DisplayedElapsed(&openTables[i], now)
		bill := services.ComputeBill(openTables[i].HourlyRate, elapsed, openTables[i].SessionItems)
		openTabsValue += bill.Total
	}

	var lowStock []models.Product
	if err := ac.DB.Where("stock <= ?", services.LowStockThreshold).
		Order("stock ASC").Find(&lowStock).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"tables": gin.H{
			"available":      available,
			"in_use":         inUse,
			"paused":         paused,
			"out_of_service": outOfService,
		},
		"today": gin.H{
			"revenue":         today.Total,
			"revenue_display": utils.FormatCurrencyINR(today.Total),
			"transactions":    today.Transactions,
		},
		"open_tabs_value": openTabsValue,
		"low_stock":       lowStock,
	})
}
