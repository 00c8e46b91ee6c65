package models

import "time"

// Table status values. A table with an open session is either
// in-use (timer running) or paused (timer stopped, bill not final).
const (
	TableAvailable    = "available"
	TableInUse        = "in-use"
	TablePaused       = "paused"
	TableOutOfService = "out-of-service"
)

type Table struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Name       string  `gorm:"type:varchar(100);not null" json:"name"`
	HourlyRate float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"hourly_rate"`
	Status     string  `gorm:"type:varchar(20);not null;default:'available'" json:"status"`

	// StartTime marks the beginning of the current running segment
	// (unix millis), 0 when the timer is not running. ElapsedTime holds
	// the seconds accumulated by completed segments only; the running
	// segment is always derived from StartTime, never stored.
	StartTime      int64  `gorm:"not null;default:0" json:"start_time"`
	ElapsedTime    int64  `gorm:"not null;default:0" json:"elapsed_time"`
	LastPausedTime *int64 `json:"last_paused_time,omitempty"`

	// SessionStartTime is set once when the session starts and survives
	// pause/resume, so the final bill can carry the real session window.
	SessionStartTime int64 `gorm:"not null;default:0" json:"session_start_time"`

	CustomerID *uint     `gorm:"index" json:"customer_id,omitempty"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	SessionItems []SessionItem `gorm:"foreignKey:TableID" json:"session_items"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
