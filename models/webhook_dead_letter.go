package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookDeadLetter records an outbound delivery that exhausted its
// retry budget, so operators can replay it by hand.
type WebhookDeadLetter struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Event     string         `gorm:"type:varchar(50);not null" json:"event"`
	OrderID   *uint          `gorm:"index" json:"order_id,omitempty"`
	Payload   datatypes.JSON `json:"payload"`
	Attempts  int            `gorm:"not null" json:"attempts"`
	LastError string         `gorm:"type:text" json:"last_error"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}
