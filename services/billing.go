package services

import (
	"math"
	"time"

	"github.com/cuetracker/billiard-app/models"
)

// BillBreakdown is the result of the bill calculation. Total is the
// floored grand total; the sub-totals stay exact so the split between
// table time and products is preserved on the bill.
type BillBreakdown struct {
	TableBill float64 `json:"table_bill"`
	ItemsBill float64 `json:"items_bill"`
	Total     float64 `json:"total"`
}

// DisplayedElapsed derives the currently billable seconds for a table.
// ElapsedTime holds completed segments; while the table is in use the
// running segment is added from StartTime. This is the only elapsed
// time formula in the codebase: every transition and every display
// path goes through it, so what staff see is what gets billed.
func DisplayedElapsed(table *models.Table, now time.Time) int64 {
	elapsed := table.ElapsedTime
	if table.Status == models.TableInUse && table.StartTime > 0 {
		elapsed += (now.UnixMilli() - table.StartTime) / 1000
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ComputeBill combines elapsed time, hourly rate and session items.
// Inputs are assumed non-negative; validation happens at the edges.
func ComputeBill(hourlyRate float64, elapsedSeconds int64, items []models.SessionItem) BillBreakdown {
	tableBill := float64(elapsedSeconds) / 3600 * hourlyRate

	var itemsBill float64
	for _, item := range items {
		itemsBill += item.UnitPrice * float64(item.Quantity)
	}

	return BillBreakdown{
		TableBill: tableBill,
		ItemsBill: itemsBill,
		Total:     math.Floor(tableBill + itemsBill),
	}
}
