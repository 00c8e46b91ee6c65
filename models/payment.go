package models

import "time"

// Payment is a standalone ledger entry for a balance top-up. It is
// written together with the matching customer balance increment in one
// transaction, independent of any bill.
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	Customer    Customer  `gorm:"foreignKey:CustomerID" json:"customer"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate time.Time `gorm:"not null" json:"payment_date"`
	StaffID     uint      `gorm:"not null" json:"staff_id"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
