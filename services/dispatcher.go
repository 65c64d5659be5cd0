package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/realtime"
	"github.com/pedidoflow/restaurante-app/utils"
)

// Route describes who gets told about an event and with what text.
type Route struct {
	Roles    []string
	Priority string
	Title    string
	Message  string
}

// RouteLifecycleEvent maps a lifecycle event to its staff audience.
// Customers are never notified through this path; they are reached by
// the webhook relay. Events with no staff audience return ok=false.
func RouteLifecycleEvent(eventType string, order *models.Order) (Route, bool) {
	label := fmt.Sprintf("Pedido #%d", order.OrderNumber)
	if order.TableNumber != "" {
		label += fmt.Sprintf(" (mesa %s)", order.TableNumber)
	}

	switch eventType {
	case models.EventOrderCreated:
		return Route{
			Roles:    []string{models.RoleWaiter, models.RoleKitchen},
			Priority: models.PriorityNormal,
			Title:    "Novo pedido",
			Message:  fmt.Sprintf("%s — %s", label, utils.FormatCurrencyBRL(order.Total)),
		}, true
	case models.EventOrderConfirmed:
		return Route{
			Roles:    []string{models.RoleKitchen},
			Priority: models.PriorityNormal,
			Title:    "Pedido confirmado",
			Message:  fmt.Sprintf("%s confirmado, iniciar preparo", label),
		}, true
	case models.EventOrderReady:
		return Route{
			Roles:    []string{models.RoleWaiter, models.RoleAdmin},
			Priority: models.PriorityNormal,
			Title:    "Pedido pronto",
			Message:  fmt.Sprintf("%s pronto para entrega", label),
		}, true
	case models.EventOrderCancelled:
		reason := DefaultCancelReason
		if order.RejectionReason != nil {
			reason = *order.RejectionReason
		}
		return Route{
			Roles:    []string{models.RoleWaiter, models.RoleKitchen, models.RoleAdmin},
			Priority: models.PriorityNormal,
			Title:    "Pedido cancelado",
			Message:  fmt.Sprintf("%s cancelado: %s", label, reason),
		}, true
	case models.EventItemsAdded:
		return Route{
			Roles:    []string{models.RoleKitchen, models.RoleWaiter},
			Priority: models.PriorityNormal,
			Title:    "Itens adicionados",
			Message:  fmt.Sprintf("%s recebeu novos itens", label),
		}, true
	default:
		// preparing and delivered have no staff audience: the kitchen
		// started preparing it and the waiter delivered it.
		return Route{}, false
	}
}

// RouteWaiterCall routes a table call to the waiters.
func RouteWaiterCall(tableNumber, reason string) Route {
	msg := fmt.Sprintf("Mesa %s chamando", tableNumber)
	if reason != "" {
		msg += ": " + reason
	}
	return Route{
		Roles:    []string{models.RoleWaiter},
		Priority: models.PriorityNormal,
		Title:    "Chamado de mesa",
		Message:  msg,
	}
}

// RouteBillRequest routes a bill request to the waiters.
func RouteBillRequest(tableNumber string) Route {
	return Route{
		Roles:    []string{models.RoleWaiter},
		Priority: models.PriorityNormal,
		Title:    "Conta solicitada",
		Message:  fmt.Sprintf("Mesa %s pediu a conta", tableNumber),
	}
}

// RouteQuestion sends kitchen questions (menu, ingredients,
// preparation) to the kitchen; anything else, including categories we
// have never seen, goes to the waiter.
func RouteQuestion(category, text string) Route {
	roles := []string{models.RoleWaiter}
	switch category {
	case models.QuestionCategoryMenu,
		models.QuestionCategoryIngredients,
		models.QuestionCategoryPreparation:
		roles = []string{models.RoleKitchen}
	default:
	}
	return Route{
		Roles:    roles,
		Priority: models.PriorityNormal,
		Title:    "Pergunta de cliente",
		Message:  text,
	}
}

// RouteComplaint always includes the admin. A high-urgency complaint
// goes straight to the admin alone, marked urgent.
func RouteComplaint(urgency, text string) Route {
	switch urgency {
	case models.UrgencyHigh:
		return Route{
			Roles:    []string{models.RoleAdmin},
			Priority: models.PriorityUrgent,
			Title:    "Reclamação urgente",
			Message:  text,
		}
	default:
		return Route{
			Roles:    []string{models.RoleAdmin, models.RoleWaiter},
			Priority: models.PriorityNormal,
			Title:    "Reclamação",
			Message:  text,
		}
	}
}

// RouteRating escalates low ratings (<= 2 of 5) to the admin as
// urgent, whether or not the customer flagged anything.
func RouteRating(overall int, comment string) Route {
	msg := fmt.Sprintf("Avaliação %d/5", overall)
	if comment != "" {
		msg += ": " + comment
	}
	if overall <= 2 {
		return Route{
			Roles:    []string{models.RoleAdmin},
			Priority: models.PriorityUrgent,
			Title:    "Avaliação baixa",
			Message:  msg,
		}
	}
	return Route{
		Roles:    []string{models.RoleAdmin},
		Priority: models.PriorityNormal,
		Title:    "Nova avaliação",
		Message:  msg,
	}
}

// RouteSuggestion routes customer suggestions to the admin.
func RouteSuggestion(text string) Route {
	return Route{
		Roles:    []string{models.RoleAdmin},
		Priority: models.PriorityNormal,
		Title:    "Sugestão de cliente",
		Message:  text,
	}
}

// Dispatcher persists notifications and pushes them to the realtime
// streams. Persistence failures are logged, never propagated: the
// mutation that produced the event has already committed and must not
// be affected.
type Dispatcher struct {
	DB *gorm.DB
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{DB: db}
}

// Notify writes one notification for the route and broadcasts it.
// Returns nil when persistence failed.
func (d *Dispatcher) Notify(eventType string, route Route, data map[string]interface{}) *models.Notification {
	payload, _ := json.Marshal(data)
	roles, _ := json.Marshal(route.Roles)

	notif := models.Notification{
		Type:        eventType,
		Title:       route.Title,
		Message:     route.Message,
		Data:        payload,
		TargetRoles: roles,
		Priority:    route.Priority,
	}
	if err := d.DB.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("dispatcher: failed to persist %s notification: %v", eventType, err)
		return nil
	}

	realtime.BroadcastNotification(notif)
	return &notif
}
