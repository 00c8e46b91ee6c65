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

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// DailyReport -> revenue summary for one day (?date=2026-08-31,
// default today): totals, table/items split, payment method split,
// transaction count and hours billed.
func (rc *ReportController) DailyReport(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid date: %s", raw))
			return
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	summary, err := rc.summarize(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	summary["date"] = start.Format("2006-01-02")
	utils.RespondJSON(c, http.StatusOK, "Daily report", summary)
}

// WeeklyReport -> seven-day summary starting at ?week_start (default:
// the most recent Monday), one row per day.
func (rc *ReportController) WeeklyReport(c *gin.Context) {
	weekStart, ok := rc.parseWeekStart(c)
	if !ok {
		return
	}

	rows, err := rc.weeklyRows(weekStart)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var total float64
	for _, row := range rows {
		total += row.Total
	}

	utils.RespondJSON(c, http.StatusOK, "Weekly report", gin.H{
		"week_start": weekStart.Format("2006-01-02"),
		"days":       rows,
		"total":      total,
	})
}

// WeeklyReportPDF -> the same seven-day summary as a printable PDF
func (rc *ReportController) WeeklyReportPDF(c *gin.Context) {
	weekStart, ok := rc.parseWeekStart(c)
	if !ok {
		return
	}

	rows, err := rc.weeklyRows(weekStart)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdf, err := services.GenerateWeeklyReportPDF(weekStart, rows)
	if err != nil {
		utils.ErrorLogger.Printf("Weekly report PDF failed for week %s: %v",
			weekStart.Format("2006-01-02"), err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=weekly-report-%s.pdf", weekStart.Format("2006-01-02")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// TopProducts -> best sellers by quantity over ?days (default 7)
func (rc *ReportController) TopProducts(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &days); err != nil || days <= 0 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid days: %s", raw))
			return
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	type productRow struct {
		ProductName string  `json:"product_name"`
		Quantity    int64   `json:"quantity"`
		Revenue     float64 `json:"revenue"`
	}
	var rows []productRow
	if err := rc.DB.Model(&models.BillItem{}).
		Select("bill_items.product_name, SUM(bill_items.quantity) AS quantity, SUM(bill_items.quantity * bill_items.unit_price) AS revenue").
		Joins("JOIN bills ON bills.id = bill_items.bill_id").
		Where("bills.bill_date >= ?", since).
		Group("bill_items.product_name").
		Order("quantity DESC").
		Limit(10).
		Scan(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Top products", gin.H{
		"since":    since.Format("2006-01-02"),
		"products": rows,
	})
}

// TableUtilization -> billed hours per table over ?days (default 7)
func (rc *ReportController) TableUtilization(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &days); err != nil || days <= 0 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid days: %s", raw))
			return
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	type utilizationRow struct {
		TableID      uint    `json:"table_id"`
		TableName    string  `json:"table_name"`
		Sessions     int64   `json:"sessions"`
		HoursBilled  float64 `json:"hours_billed"`
		TableRevenue float64 `json:"table_revenue"`
	}
	var rows []utilizationRow
	if err := rc.DB.Model(&models.Bill{}).
		Select("table_id, table_name, COUNT(*) AS sessions, SUM(duration) / 3600.0 AS hours_billed, SUM(table_bill) AS table_revenue").
		Where("bill_date >= ?", since).
		Group("table_id, table_name").
		Order("hours_billed DESC").
		Scan(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table utilization", gin.H{
		"since":  since.Format("2006-01-02"),
		"tables": rows,
	})
}

func (rc *ReportController) parseWeekStart(c *gin.Context) (time.Time, bool) {
	if raw := c.Query("week_start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid week_start: %s", raw))
			return time.Time{}, false
		}
		return parsed, true
	}

	now := time.Now()
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -offset)
	return monday, true
}

func (rc *ReportController) weeklyRows(weekStart time.Time) ([]services.DailyRevenue, error) {
	rows := make([]services.DailyRevenue, 0, 7)
	for i := 0; i < 7; i++ {
		start := weekStart.AddDate(0, 0, i)
		end := start.AddDate(0, 0, 1)

		var agg struct {
			TableRevenue float64
			ItemsRevenue float64
			Total        float64
			Transactions int64
		}
		if err := rc.DB.Model(&models.Bill{}).
			Select("COALESCE(SUM(table_bill),0) AS table_revenue, COALESCE(SUM(items_bill),0) AS items_revenue, COALESCE(SUM(total_amount),0) AS total, COUNT(*) AS transactions").
			Where("bill_date >= ? AND bill_date < ?", start, end).
			Scan(&agg).Error; err != nil {
			return nil, err
		}

		rows = append(rows, services.DailyRevenue{
			Day:          start,
			TableRevenue: agg.TableRevenue,
			ItemsRevenue: agg.ItemsRevenue,
			Total:        agg.Total,
			Transactions: agg.Transactions,
		})
	}
	return rows, nil
}

func (rc *ReportController) summarize(start, end time.Time) (gin.H, error) {
	var agg struct {
		TableRevenue float64
		ItemsRevenue float64
		Total        float64
		Collected    float64
		Transactions int64
		HoursBilled  float64
	}
	if err := rc.DB.Model(&models.Bill{}).
		Select("COALESCE(SUM(table_bill),0) AS table_revenue, COALESCE(SUM(items_bill),0) AS items_revenue, COALESCE(SUM(total_amount),0) AS total, COALESCE(SUM(amount_paid),0) AS collected, COUNT(*) AS transactions, COALESCE(SUM(duration),0) / 3600.0 AS hours_billed").
		Where("bill_date >= ? AND bill_date < ?", start, end).
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	type methodRow struct {
		PaymentMethod string  `json:"payment_method"`
		Total         float64 `json:"total"`
		Count         int64   `json:"count"`
	}
	var methods []methodRow
	if err := rc.DB.Model(&models.Bill{}).
		Select("payment_method, COALESCE(SUM(total_amount),0) AS total, COUNT(*) AS count").
		Where("bill_date >= ? AND bill_date < ?", start, end).
		Group("payment_method").
		Scan(&methods).Error; err != nil {
		return nil, err
	}

	return gin.H{
		"table_revenue": agg.TableRevenue,
		"items_revenue": agg.ItemsRevenue,
		"total_revenue": agg.Total,
		"collected":     agg.Collected,
		"transactions":  agg.Transactions,
		"hours_billed":  agg.HoursBilled,
		"by_method":     methods,
		"total_display": utils.FormatCurrencyINR(agg.Total),
	}, nil
}
