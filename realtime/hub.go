package realtime

import (
	"sync"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

// Event types pushed to subscribers.
const (
	EventOrderUpdate       = "order_update"
	EventOrderItemUpdate   = "order_item_update"
	EventStaffNotification = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Scope selects which messages a subscriber receives: every event
// visible to a staff role, or a single order tracked by its public id.
// Exactly one field is set.
type Scope struct {
	Role    string
	OrderID string
}

// Subscriber receives pushed messages. Delivery is best-effort: a
// failed Deliver is logged and skipped, never retried here, because
// every consumer re-fetches full state on its polling interval anyway.
type Subscriber interface {
	Deliver(msg Message) error
}

type hub struct {
	mu   sync.Mutex
	subs map[Subscriber]Scope
}

var defaultHub = hub{subs: make(map[Subscriber]Scope)}

// Subscribe registers a subscriber under a scope.
func Subscribe(s Subscriber, scope Scope) {
	defaultHub.mu.Lock()
	defer defaultHub.mu.Unlock()
	defaultHub.subs[s] = scope
}

// Unsubscribe removes a subscriber.
func Unsubscribe(s Subscriber) {
	defaultHub.mu.Lock()
	defer defaultHub.mu.Unlock()
	delete(defaultHub.subs, s)
}

// BroadcastOrderUpdate pushes the new order representation to every
// staff stream and to the customer tracking that specific order.
func BroadcastOrderUpdate(order models.Order) {
	publish(Message{Event: EventOrderUpdate, Data: order}, func(scope Scope) bool {
		return scope.Role != "" || scope.OrderID == order.PublicID
	})
}

// BroadcastItemUpdate pushes a per-item kitchen progress change.
func BroadcastItemUpdate(item models.OrderItem, orderPublicID string) {
	publish(Message{Event: EventOrderItemUpdate, Data: item}, func(scope Scope) bool {
		return scope.Role != "" || scope.OrderID == orderPublicID
	})
}

// BroadcastNotification pushes a staff notification to the streams of
// its target roles only.
func BroadcastNotification(n models.Notification) {
	roles := n.Roles()
	publish(Message{Event: EventStaffNotification, Data: n}, func(scope Scope) bool {
		if scope.Role == "" {
			return false
		}
		for _, r := range roles {
			if r == scope.Role {
				return true
			}
		}
		return false
	})
}

func publish(msg Message, match func(Scope) bool) {
	defaultHub.mu.Lock()
	defer defaultHub.mu.Unlock()

	for sub, scope := range defaultHub.subs {
		if !match(scope) {
			continue
		}
		if err := sub.Deliver(msg); err != nil {
			utils.ErrorLogger.Printf("realtime: dropping push to subscriber: %v", err)
		}
	}
}
