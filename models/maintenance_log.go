package models

import "time"

const (
	MaintenanceOpen   = "open"
	MaintenanceClosed = "closed"
)

// MaintenanceLog tracks a table that has been taken out of service
// (cloth change, cushion repair, leveling). Status is 'open' while the
// table is out of service and 'closed' once it is back on the floor.
type MaintenanceLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   uint      `gorm:"not null" json:"table_id"`
	Table     Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	StaffID   uint      `gorm:"not null" json:"staff_id"`
	Staff     User      `gorm:"foreignKey:StaffID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"staff"`
	Reason    string    `gorm:"type:text" json:"reason"`
	Status    string    `gorm:"type:varchar(15);not null;default:'open'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
