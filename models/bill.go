package models

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCash   = "cash"
	PaymentUPI    = "upi"
	PaymentMember = "member"
)

// Bill is the immutable record of a completed session. TotalAmount is
// always floor(TableBill + ItemsBill); the sub-totals stay exact.
// Bills are never updated after creation.
type Bill struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Number        string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	TableID       uint       `gorm:"not null;index" json:"table_id"`
	TableName     string     `gorm:"type:varchar(100);not null" json:"table_name"`
	CustomerID    *uint      `gorm:"index" json:"customer_id,omitempty"`
	Customer      *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	BillDate      time.Time  `gorm:"not null;index" json:"bill_date"`
	TableBill     float64    `gorm:"type:decimal(12,2);not null" json:"table_bill"`
	ItemsBill     float64    `gorm:"type:decimal(12,2);not null" json:"items_bill"`
	TotalAmount   float64    `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	AmountPaid    float64    `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	PaymentMethod string     `gorm:"type:varchar(20);not null" json:"payment_method"`
	StaffID       uint       `gorm:"not null" json:"staff_id"`
	Notes         string     `gorm:"type:text" json:"notes"`
	StartTime     int64      `gorm:"not null" json:"start_time"`
	EndTime       int64      `gorm:"not null" json:"end_time"`
	Duration      int64      `gorm:"not null" json:"duration"` // billable seconds
	HoursUsed     float64    `gorm:"not null;default:0" json:"hours_used"`
	Items         []BillItem `gorm:"foreignKey:BillID" json:"items"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
}

// BillItem is the snapshot of one session item at commit time. It has
// no live reference back to the product row, so later product edits
// never change a committed bill.
type BillItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	BillID      uint    `gorm:"not null;index" json:"bill_id"`
	ProductID   uint    `gorm:"not null" json:"product_id"`
	ProductName string  `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal    float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
