package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pedidoflow/restaurante-app/models"
)

func TestRouteLifecycleEventAudiences(t *testing.T) {
	order := &models.Order{OrderNumber: 7, TableNumber: "3", Total: 42.50}

	cases := []struct {
		event    string
		roles    []string
		audience bool
	}{
		{models.EventOrderCreated, []string{models.RoleWaiter, models.RoleKitchen}, true},
		{models.EventOrderConfirmed, []string{models.RoleKitchen}, true},
		{models.EventOrderReady, []string{models.RoleWaiter, models.RoleAdmin}, true},
		{models.EventOrderCancelled, []string{models.RoleWaiter, models.RoleKitchen, models.RoleAdmin}, true},
		{models.EventItemsAdded, []string{models.RoleKitchen, models.RoleWaiter}, true},
		{models.EventOrderPreparing, nil, false},
		{models.EventOrderDelivered, nil, false},
		{"something_new", nil, false},
	}

	for _, tc := range cases {
		route, ok := RouteLifecycleEvent(tc.event, order)
		assert.Equal(t, tc.audience, ok, "event %s", tc.event)
		if ok {
			assert.ElementsMatch(t, tc.roles, route.Roles, "event %s", tc.event)
			assert.Equal(t, models.PriorityNormal, route.Priority)
		}
	}
}

func TestRouteQuestionByCategory(t *testing.T) {
	kitchen := []string{
		models.QuestionCategoryMenu,
		models.QuestionCategoryIngredients,
		models.QuestionCategoryPreparation,
	}
	for _, cat := range kitchen {
		route := RouteQuestion(cat, "tem glúten?")
		assert.Equal(t, []string{models.RoleKitchen}, route.Roles, "category %s", cat)
	}

	// Everything else, including categories never seen before, goes to
	// the waiter.
	for _, cat := range []string{models.QuestionCategoryGeneral, "", "horário"} {
		route := RouteQuestion(cat, "que horas fecha?")
		assert.Equal(t, []string{models.RoleWaiter}, route.Roles, "category %q", cat)
	}
}

func TestRouteComplaintUrgency(t *testing.T) {
	urgent := RouteComplaint(models.UrgencyHigh, "comida fria")
	assert.Equal(t, []string{models.RoleAdmin}, urgent.Roles)
	assert.Equal(t, models.PriorityUrgent, urgent.Priority)

	normal := RouteComplaint(models.UrgencyNormal, "demora no atendimento")
	assert.ElementsMatch(t, []string{models.RoleAdmin, models.RoleWaiter}, normal.Roles)
	assert.Equal(t, models.PriorityNormal, normal.Priority)
}

func TestRouteRatingEscalatesLowScores(t *testing.T) {
	for _, score := range []int{1, 2} {
		route := RouteRating(score, "")
		assert.Equal(t, []string{models.RoleAdmin}, route.Roles)
		assert.Equal(t, models.PriorityUrgent, route.Priority, "score %d", score)
	}
	for _, score := range []int{3, 4, 5} {
		route := RouteRating(score, "ótimo")
		assert.Equal(t, []string{models.RoleAdmin}, route.Roles)
		assert.Equal(t, models.PriorityNormal, route.Priority, "score %d", score)
	}
}

func TestDispatcherPersistsNotification(t *testing.T) {
	db := openTestDB(t, "dispatcher_persist")
	d := NewDispatcher(db)

	route := RouteWaiterCall("5", "talheres")
	notif := d.Notify("waiter_call", route, map[string]interface{}{"table_number": "5"})
	assert.NotNil(t, notif)

	var stored models.Notification
	assert.NoError(t, db.First(&stored, notif.ID).Error)
	assert.Equal(t, "waiter_call", stored.Type)
	assert.False(t, stored.IsRead)
	assert.True(t, stored.HasRole(models.RoleWaiter))
	assert.False(t, stored.HasRole(models.RoleAdmin))
}
