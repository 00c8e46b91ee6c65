package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/services"
	"github.com/cuetracker/billiard-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BillController struct {
	DB *gorm.DB
}

func NewBillController(db *gorm.DB) *BillController {
	return &BillController{DB: db}
}

// GetAllBills -> lists bills newest first, with optional filters:
// ?from=2026-01-01&till=2026-01-31&table_id=3&customer_id=7&method=cash
func (bc *BillController) GetAllBills(c *gin.Context) {
	query := bc.DB.Preload("Items").Order("bill_date DESC")

	if from := c.Query("from"); from != "" {
		day, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid from date: %s", from))
			return
		}
		query = query.Where("bill_date >= ?", day)
	}
	if till := c.Query("till"); till != "" {
		day, err := time.Parse("2006-01-02", till)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid till date: %s", till))
			return
		}
		query = query.Where("bill_date < ?", day.AddDate(0, 0, 1))
	}
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}

	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bills", bills)
}

// GetBillByID
func (bc *BillController) GetBillByID(c *gin.Context) {
	billID := c.Param("bill_id")

	var bill models.Bill
	if err := bc.DB.Preload("Items").First(&bill, billID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("bill %s not found", billID))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

// GetBillPDF -> renders the bill as a printable receipt
func (bc *BillController) GetBillPDF(c *gin.Context) {
	billID := c.Param("bill_id")

	var bill models.Bill
	if err := bc.DB.Preload("Items").First(&bill, billID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("bill %s not found", billID))
		return
	}

	pdf, err := services.GenerateBillPDF(&bill)
	if err != nil {
		utils.ErrorLogger.Printf("PDF generation failed for bill %d: %v", bill.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", bill.Number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
