package models

import "time"

// Customer is an optional session owner. Balance is a signed running
// value: positive means credit held by the club, negative means the
// customer owes money.
type Customer struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	FirstName      string      `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName       string      `gorm:"type:varchar(100)" json:"last_name"`
	Phone          string      `gorm:"type:varchar(30)" json:"phone"`
	Email          string      `gorm:"type:varchar(255)" json:"email"`
	MembershipID   *uint       `gorm:"index" json:"membership_id,omitempty"`
	Membership     *Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
	RemainingHours float64     `gorm:"not null;default:0" json:"remaining_hours"`
	ValidFrom      *time.Time  `json:"valid_from,omitempty"`
	ValidTill      *time.Time  `json:"valid_till,omitempty"`
	Balance        float64     `gorm:"type:decimal(12,2);not null;default:0.00" json:"balance"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}
