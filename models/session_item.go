package models

import "time"

// SessionItem is a line item added while a session is open. At most one
// row exists per (table, product); adding the same product again
// increments the quantity. UnitPrice snapshots the product price at
// add time and is what gets billed.
type SessionItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	TableID   uint    `gorm:"not null;uniqueIndex:idx_table_product" json:"table_id"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_table_product" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
