package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/controllers"
	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

// asRole stands in for the auth middleware in tests.
func asRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", role)
		c.Next()
	}
}

func setupOrderRouter(db *gorm.DB, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asRole(role))
	ctrl := controllers.NewOrderController(db)
	r.GET("/admin/orders", ctrl.GetAllOrders)
	r.GET("/admin/orders/:order_id", ctrl.GetOrderByID)
	r.POST("/admin/orders/:order_id/confirm", ctrl.ConfirmOrder)
	r.POST("/admin/orders/:order_id/start-preparing", ctrl.StartPreparing)
	r.POST("/admin/orders/:order_id/ready", ctrl.MarkReady)
	r.POST("/admin/orders/:order_id/deliver", ctrl.MarkDelivered)
	r.POST("/admin/orders/:order_id/reject", ctrl.RejectOrder)
	r.POST("/admin/order-items/:item_id/status", ctrl.UpdateItemStatus)
	r.GET("/admin/kitchen/display", ctrl.GetKitchenDisplay)
	r.GET("/admin/kitchen/pending-items", ctrl.GetPendingItems)
	return r
}

func seedOrder(db *gorm.DB, status string, number uint, itemCount int) *models.Order {
	order := models.Order{
		PublicID:      uuid.NewString(),
		OrderNumber:   number,
		Status:        status,
		CustomerPhone: "+5511988880000",
		OrderType:     models.OrderTypeDineIn,
	}
	db.Create(&order)

	var menu models.Menu
	db.First(&menu)
	for i := 0; i < itemCount; i++ {
		db.Create(&models.OrderItem{
			OrderID:    order.ID,
			MenuID:     menu.ID,
			Quantity:   1,
			UnitPrice:  menu.Price,
			TotalPrice: menu.Price,
			Status:     models.ItemStatusPending,
		})
	}
	return &order
}

func TestStaffLifecycleEndpoints(t *testing.T) {
	utils.InitLogger()
	db := setupWebhookTestDB("staff_lifecycle")
	r := setupOrderRouter(db, models.RoleWaiter)

	order := seedOrder(db, models.OrderStatusPending, 1, 1)
	base := fmt.Sprintf("/admin/orders/%d", order.ID)

	w := postJSON(r, base+"/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusConfirmed, data["status"])
	assert.NotNil(t, data["confirmed_at"])

	// Confirming twice is a conflict, not a crash.
	w = postJSON(r, base+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Skipping a stage is rejected.
	w = postJSON(r, base+"/ready", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(r, base+"/start-preparing", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postJSON(r, base+"/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postJSON(r, base+"/deliver", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/admin/orders/999/confirm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectOrderNeedsReason(t *testing.T) {
	utils.InitLogger()
	db := setupWebhookTestDB("staff_reject")
	r := setupOrderRouter(db, models.RoleWaiter)

	order := seedOrder(db, models.OrderStatusConfirmed, 1, 1)
	base := fmt.Sprintf("/admin/orders/%d", order.ID)

	w := postJSON(r, base+"/reject", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, base+"/reject", map[string]interface{}{"reason": "acabou o ingrediente"})
	assert.Equal(t, http.StatusOK, w.Code)

	var fresh models.Order
	db.First(&fresh, order.ID)
	assert.Equal(t, models.OrderStatusCancelled, fresh.Status)
	assert.Equal(t, "acabou o ingrediente", *fresh.RejectionReason)
}

func TestItemDoneAutoReadiesOrder(t *testing.T) {
	utils.InitLogger()
	db := setupWebhookTestDB("staff_items")
	r := setupOrderRouter(db, models.RoleKitchen)

	order := seedOrder(db, models.OrderStatusPreparing, 1, 2)
	var items []models.OrderItem
	db.Where("order_id = ?", order.ID).Find(&items)

	w := postJSON(r, fmt.Sprintf("/admin/order-items/%d/status", items[0].ID),
		map[string]interface{}{"status": "done"})
	assert.Equal(t, http.StatusOK, w.Code)

	var fresh models.Order
	db.First(&fresh, order.ID)
	assert.Equal(t, models.OrderStatusPreparing, fresh.Status, "one pending item keeps the order preparing")

	w = postJSON(r, fmt.Sprintf("/admin/order-items/%d/status", items[1].ID),
		map[string]interface{}{"status": "done"})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&fresh, order.ID)
	assert.Equal(t, models.OrderStatusReady, fresh.Status, "last item done moves the order to ready")
	assert.NotNil(t, fresh.ReadyAt)

	// Unknown item status is rejected.
	w = postJSON(r, fmt.Sprintf("/admin/order-items/%d/status", items[0].ID),
		map[string]interface{}{"status": "burnt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKitchenViewsNeedKitchenRole(t *testing.T) {
	utils.InitLogger()
	db := setupWebhookTestDB("staff_kitchen")

	seedOrder(db, models.OrderStatusConfirmed, 1, 2)

	waiter := setupOrderRouter(db, models.RoleWaiter)
	req, _ := http.NewRequest("GET", "/admin/kitchen/pending-items", nil)
	w := httptest.NewRecorder()
	waiter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	kitchen := setupOrderRouter(db, models.RoleKitchen)
	req, _ = http.NewRequest("GET", "/admin/kitchen/pending-items", nil)
	w = httptest.NewRecorder()
	kitchen.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["data"], 2)

	req, _ = http.NewRequest("GET", "/admin/kitchen/display", nil)
	w = httptest.NewRecorder()
	kitchen.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Len(t, body["data"], 1)
}

func TestGetAllOrdersFiltersByStatus(t *testing.T) {
	utils.InitLogger()
	db := setupWebhookTestDB("staff_list")
	r := setupOrderRouter(db, models.RoleAdmin)

	seedOrder(db, models.OrderStatusPending, 1, 1)
	seedOrder(db, models.OrderStatusReady, 2, 1)

	req, _ := http.NewRequest("GET", "/admin/orders?status=ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	assert.Len(t, data, 1)
	assert.Equal(t, models.OrderStatusReady, data[0].(map[string]interface{})["status"])
}

func TestNotificationLifecycle(t *testing.T) {
	utils.InitLogger()
	db := setupWebhookTestDB("staff_notifs")

	kitchenOnly, _ := json.Marshal([]string{models.RoleKitchen})
	waiterOnly, _ := json.Marshal([]string{models.RoleWaiter})
	db.Create(&models.Notification{Type: "order_confirmed", Title: "t", Message: "m", TargetRoles: kitchenOnly, Priority: models.PriorityNormal})
	db.Create(&models.Notification{Type: "waiter_call", Title: "t", Message: "m", TargetRoles: waiterOnly, Priority: models.PriorityNormal})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asRole(models.RoleKitchen))
	ctrl := controllers.NewNotificationController(db)
	r.GET("/admin/notifications", ctrl.GetAllNotifications)
	r.PATCH("/admin/notifications/:notif_id/read", ctrl.MarkRead)

	req, _ := http.NewRequest("GET", "/admin/notifications", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	assert.Len(t, data, 1, "only notifications targeted at the caller's role")

	id := data[0].(map[string]interface{})["id"].(float64)
	req, _ = http.NewRequest("PATCH", fmt.Sprintf("/admin/notifications/%.0f/read", id), bytes.NewBuffer(nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unread filter now excludes it.
	req, _ = http.NewRequest("GET", "/admin/notifications?unread=true", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body = decodeBody(t, w)
	assert.Empty(t, body["data"])

	req, _ = http.NewRequest("PATCH", "/admin/notifications/999/read", bytes.NewBuffer(nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
