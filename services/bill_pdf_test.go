package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuetracker/billiard-app/models"
)

func TestGenerateBillPDF(t *testing.T) {
	bill := &models.Bill{
		Number:        "BILL/20260314/AB12CD34",
		TableName:     "Snooker 1",
		BillDate:      time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		TableBill:     300,
		ItemsBill:     95.5,
		TotalAmount:   395,
		AmountPaid:    400,
		PaymentMethod: models.PaymentCash,
		Duration:      5400,
		Notes:         "birthday frame",
		Items: []models.BillItem{
			{ProductName: "Cola", Quantity: 2, UnitPrice: 40, Subtotal: 80},
			{ProductName: "Chips", Quantity: 1, UnitPrice: 15.5, Subtotal: 15.5},
		},
	}

	out, err := GenerateBillPDF(bill)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateWeeklyReportPDF(t *testing.T) {
	weekStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := []DailyRevenue{
		{Day: weekStart, TableRevenue: 1200, ItemsRevenue: 340, Total: 1540, Transactions: 9},
		{Day: weekStart.AddDate(0, 0, 1), TableRevenue: 800, ItemsRevenue: 150, Total: 950, Transactions: 5},
	}

	out, err := GenerateWeeklyReportPDF(weekStart, rows)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}
