package models

import (
	"time"
)

// Order lifecycle statuses. Transitions between them are owned by
// services.LifecycleService; nothing else writes Order.Status.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypeDineIn  = "dine_in"
	OrderTypeTakeout = "takeout"
)

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	PublicID    string `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	OrderNumber uint   `gorm:"uniqueIndex;not null" json:"order_number"`

	Status        string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TableNumber   string `gorm:"type:varchar(20);index" json:"table_number,omitempty"`
	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(32);not null;index" json:"customer_phone"`
	OrderType     string `gorm:"type:varchar(20);not null;default:'dine_in'" json:"order_type"`

	Subtotal float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Discount float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount"`
	Total    float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`

	Notes           string  `gorm:"type:text" json:"notes"`
	RejectionReason *string `gorm:"type:varchar(255)" json:"rejection_reason,omitempty"`

	// One timestamp per stage reached; set when the stage is first
	// entered, never cleared afterwards.
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PreparingAt *time.Time `json:"preparing_at,omitempty"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// IsClosed reports whether the order reached a terminal status.
// Closed orders accept no content mutation.
func (o *Order) IsClosed() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// WaitingMinutes is the elapsed time since the order was placed, frozen
// at the delivery timestamp once the order is delivered.
func (o *Order) WaitingMinutes(now time.Time) int {
	end := now
	if o.DeliveredAt != nil {
		end = *o.DeliveredAt
	}
	m := int(end.Sub(o.CreatedAt).Minutes())
	if m < 0 {
		m = 0
	}
	return m
}

// ItemProgress returns how many items are done out of the total, for
// the kitchen and table progress views.
func (o *Order) ItemProgress() (done, total int) {
	for _, it := range o.Items {
		total++
		if it.Status == ItemStatusDone {
			done++
		}
	}
	return done, total
}
