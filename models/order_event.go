package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lifecycle event types. Each row is written inside the transaction
// that mutated the order, then drained by services.EventMonitor, so no
// consumer ever observes an event before its mutation committed.
const (
	EventOrderCreated   = "order_created"
	EventOrderConfirmed = "order_confirmed"
	EventOrderPreparing = "order_preparing"
	EventOrderReady     = "order_ready"
	EventOrderDelivered = "order_delivered"
	EventOrderCancelled = "order_cancelled"
	EventItemsAdded     = "order_items_added"
)

type OrderEvent struct {
	ID        uint           `gorm:"primaryKey"`
	OrderID   uint           `gorm:"not null;index"`
	Type      string         `gorm:"type:varchar(40);not null"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"not null"`
	Processed bool           `gorm:"not null;default:false;index"`
}

// EventForStatus maps a lifecycle status to its event type.
func EventForStatus(status string) (string, bool) {
	switch status {
	case OrderStatusPending:
		return EventOrderCreated, true
	case OrderStatusConfirmed:
		return EventOrderConfirmed, true
	case OrderStatusPreparing:
		return EventOrderPreparing, true
	case OrderStatusReady:
		return EventOrderReady, true
	case OrderStatusDelivered:
		return EventOrderDelivered, true
	case OrderStatusCancelled:
		return EventOrderCancelled, true
	}
	return "", false
}
