package models

import (
	"time"
)

// Per-item kitchen statuses, independent of the order lifecycle.
const (
	ItemStatusPending = "pending"
	ItemStatusDone    = "done"
)

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"-"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	MenuID uint `gorm:"not null" json:"menu_id"`
	Menu   Menu `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`

	Quantity int `gorm:"not null" json:"quantity"`
	// Prices are snapshotted from the catalog at the moment the item is
	// added. Later catalog changes never touch existing rows.
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice float64 `gorm:"type:decimal(10,2);not null" json:"total_price"`

	Notes     string    `gorm:"type:text" json:"notes"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
