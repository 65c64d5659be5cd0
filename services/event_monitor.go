package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/realtime"
	"github.com/pedidoflow/restaurante-app/utils"
)

// EventMonitor drains the order_events table and fans each event out:
// staff notifications, realtime push, outbound webhook. Because events
// are written inside the mutating transaction and only drained here,
// every consumer observes a store already in the new state. Rows stay
// unprocessed on a crash and are redelivered on the next tick, giving
// the at-least-once contract.
type EventMonitor struct {
	DB         *gorm.DB
	Relay      *WebhookRelay
	Dispatcher *Dispatcher
	StopChan   chan struct{}
	Interval   time.Duration
}

func NewEventMonitor(db *gorm.DB, relay *WebhookRelay) *EventMonitor {
	return &EventMonitor{
		DB:         db,
		Relay:      relay,
		Dispatcher: NewDispatcher(db),
		StopChan:   make(chan struct{}),
		Interval:   500 * time.Millisecond,
	}
}

func (em *EventMonitor) Start() {
	go func() {
		ticker := time.NewTicker(em.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				em.Drain()
			case <-em.StopChan:
				return
			}
		}
	}()
}

func (em *EventMonitor) Stop() {
	close(em.StopChan)
}

// Drain processes pending events oldest-first. Exported so tests and
// the forced-run admin endpoint can pump the queue without waiting for
// a tick.
func (em *EventMonitor) Drain() int {
	var events []models.OrderEvent
	if err := em.DB.Where("processed = ?", false).
		Order("id ASC").
		Limit(100).
		Find(&events).Error; err != nil {
		utils.ErrorLogger.Printf("event monitor: fetching events: %v", err)
		return 0
	}

	processed := 0
	for _, ev := range events {
		em.process(ev)
		if err := em.DB.Model(&models.OrderEvent{}).
			Where("id = ?", ev.ID).
			Update("processed", true).Error; err != nil {
			utils.ErrorLogger.Printf("event monitor: marking event %d: %v", ev.ID, err)
			return processed
		}
		processed++
	}
	return processed
}

func (em *EventMonitor) process(ev models.OrderEvent) {
	var order models.Order
	if err := em.DB.Preload("Items").Preload("Items.Menu").First(&order, ev.OrderID).Error; err != nil {
		utils.ErrorLogger.Printf("event monitor: fetching order %d: %v", ev.OrderID, err)
		return
	}

	if route, ok := RouteLifecycleEvent(ev.Type, &order); ok {
		em.Dispatcher.Notify(ev.Type, route, map[string]interface{}{
			"order_id":     order.PublicID,
			"order_number": order.OrderNumber,
			"table_number": order.TableNumber,
			"phone":        order.CustomerPhone,
		})
	}

	realtime.BroadcastOrderUpdate(order)

	// Customers hear about status changes through the relay; content
	// changes (items added) only show up in the next status message.
	if ev.Type != models.EventItemsAdded {
		em.Relay.SendOrderStatus(&order)
	}
}
