package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
)

// DefaultCancelReason is recorded when a customer cancels without
// giving one.
const DefaultCancelReason = "não informado"

// statusSuccessors is the transition graph. No skipping stages, no
// moving backward; cancelled is reachable from pending and confirmed
// only.
var statusSuccessors = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady},
	models.OrderStatusReady:     {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// stageColumns maps a status to the timestamp column stamped when the
// stage is first entered.
var stageColumns = map[string]string{
	models.OrderStatusConfirmed: "confirmed_at",
	models.OrderStatusPreparing: "preparing_at",
	models.OrderStatusReady:     "ready_at",
	models.OrderStatusDelivered: "delivered_at",
}

// CanTransition reports whether to is a direct successor of from.
func CanTransition(from, to string) bool {
	for _, s := range statusSuccessors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// LifecycleService applies status transitions to orders. Every
// transition is a conditional update keyed on the status the caller
// observed, so two racing writers cannot both win.
type LifecycleService struct {
	DB *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{DB: db}
}

// Transition moves an order to newStatus, stamping the stage timestamp
// on first entry and recording the rejection reason on cancellation.
// The lifecycle event row is written in the same transaction, so the
// event is only ever observed after the mutation committed.
//
// Cancelling an already-cancelled order succeeds without doing
// anything: the desired end state already holds. Cancelling an order
// in preparation or later returns ErrRequiresApproval.
func (ls *LifecycleService) Transition(orderID uint, newStatus, reason string) (*models.Order, error) {
	var order models.Order

	err := ls.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if newStatus == models.OrderStatusCancelled && order.Status == models.OrderStatusCancelled {
			return nil
		}
		if !CanTransition(order.Status, newStatus) {
			// Cancelling an order already in preparation or later is
			// an escalation, not a graph violation. Decided on the
			// status read inside this transaction, so a racing
			// transition cannot turn the signal into a plain error.
			if newStatus == models.OrderStatusCancelled {
				return ErrRequiresApproval
			}
			return ErrInvalidTransition
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     newStatus,
			"updated_at": now,
		}
		if col, ok := stageColumns[newStatus]; ok {
			updates[col] = now
		}
		if newStatus == models.OrderStatusCancelled {
			if reason == "" {
				reason = DefaultCancelReason
			}
			updates["rejection_reason"] = reason
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race: someone moved the order first. Re-read to
			// tell "already there" apart from a genuine violation.
			var current models.Order
			if err := tx.First(&current, order.ID).Error; err != nil {
				return err
			}
			if newStatus == models.OrderStatusCancelled {
				if current.Status == models.OrderStatusCancelled {
					order = current
					return nil
				}
				if !CanTransition(current.Status, newStatus) {
					return ErrRequiresApproval
				}
			}
			return ErrInvalidTransition
		}

		eventType, ok := models.EventForStatus(newStatus)
		if !ok {
			return ErrInvalidTransition
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"order_id": order.ID,
			"from":     order.Status,
			"to":       newStatus,
			"reason":   reason,
		})
		return tx.Create(&models.OrderEvent{
			OrderID:   order.ID,
			Type:      eventType,
			Payload:   payload,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := ls.DB.Preload("Items").Preload("Items.Menu").First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
