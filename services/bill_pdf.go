package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/cuetracker/billiard-app/models"
	"github.com/cuetracker/billiard-app/utils"
)

// FormatDuration renders billable seconds as HH:MM:SS.
func FormatDuration(totalSeconds int64) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// GenerateBillPDF renders the receipt for a committed bill. It is a
// pure side effect after commit: a render failure never touches the
// bill itself.
func GenerateBillPDF(bill *models.Bill) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Table: %s", bill.TableName), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Bill No: %s", bill.Number), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	labelRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 7, label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "1", 1, "L", false, 0, "")
	}

	end := time.UnixMilli(bill.EndTime)
	start := time.UnixMilli(bill.StartTime)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(38, 166, 154)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 8, "Session & Payment Details", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	labelRow("Billing Date", end.Format("02 Jan 2006"))
	labelRow("Start Time", start.Format("3:04 PM"))
	labelRow("End Time", end.Format("3:04 PM"))
	labelRow("Total Duration", FormatDuration(bill.Duration))
	labelRow("Payment Method", bill.PaymentMethod)
	if bill.PaymentMethod == models.PaymentMember {
		labelRow("Member Hours Used", fmt.Sprintf("%.2f", bill.HoursUsed))
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Rate / Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Qty / Time", "1", 0, "R", true, 0, "")
	pdf.CellFormat(0, 8, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)

	hourlyRate := 0.0
	if bill.Duration > 0 {
		hourlyRate = bill.TableBill / (float64(bill.Duration) / 3600)
	}
	pdf.CellFormat(70, 7, "Table Time", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%s / hr", utils.FormatCurrencyINR(hourlyRate)), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, FormatDuration(bill.Duration), "1", 0, "R", false, 0, "")
	pdf.CellFormat(0, 7, utils.FormatCurrencyINR(bill.TableBill), "1", 1, "R", false, 0, "")

	for _, item := range bill.Items {
		pdf.CellFormat(70, 7, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, utils.FormatCurrencyINR(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 7, utils.FormatCurrencyINR(item.Subtotal), "1", 1, "R", false, 0, "")
	}

	totalRow := func(label string, amount float64) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(145, 7, label, "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 7, utils.FormatCurrencyINR(amount), "1", 1, "R", false, 0, "")
	}
	totalRow("Total Amount", bill.TotalAmount)
	totalRow("Amount Paid", bill.AmountPaid)

	if bill.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Notes: "+bill.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DailyRevenue is one row of the weekly report.
type DailyRevenue struct {
	Day          time.Time
	TableRevenue float64
	ItemsRevenue float64
	Total        float64
	Transactions int64
}

// GenerateWeeklyReportPDF renders the seven-day revenue summary.
func GenerateWeeklyReportPDF(weekStart time.Time, rows []DailyRevenue) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Weekly Revenue Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Week starting %s", weekStart.Format("02 Jan 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(35, 8, "Day", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Table Revenue", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Product Revenue", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Bills", "1", 0, "R", true, 0, "")
	pdf.CellFormat(0, 8, "Total", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)

	var grandTotal float64
	for _, row := range rows {
		pdf.CellFormat(35, 7, row.Day.Format("Mon 02 Jan"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, utils.FormatCurrencyINR(row.TableRevenue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, utils.FormatCurrencyINR(row.ItemsRevenue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", row.Transactions), "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 7, utils.FormatCurrencyINR(row.Total), "1", 1, "R", false, 0, "")
		grandTotal += row.Total
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 8, "Week Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(0, 8, utils.FormatCurrencyINR(grandTotal), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
