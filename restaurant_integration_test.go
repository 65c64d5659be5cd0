package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/config"
	"github.com/pedidoflow/restaurante-app/database"
	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/router"
	"github.com/pedidoflow/restaurante-app/services"
	"github.com/pedidoflow/restaurante-app/utils"
)

const (
	testWaitTimeout = 3 * time.Second
	testWaitTick    = 10 * time.Millisecond
)

type integrationEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	monitor *services.EventMonitor

	mu       sync.Mutex
	outbound []string // statuses received by the fake chat platform
}

func setupIntegration(t *testing.T) *integrationEnv {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	env := &integrationEnv{}

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Status string `json:"status"`
		}
		json.Unmarshal(body, &payload)
		env.mu.Lock()
		env.outbound = append(env.outbound, payload.Status)
		env.mu.Unlock()
	}))
	t.Cleanup(endpoint.Close)

	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"),
		&gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cat := models.MenuCategory{Name: "Pratos"}
	db.Create(&cat)
	db.Create(&models.Menu{CategoryID: cat.ID, Name: "X-Burger", Price: 10.00, Available: true})
	db.Create(&models.Menu{CategoryID: cat.ID, Name: "Batata Frita", Price: 5.00, Available: true})

	cfg := &config.Config{
		RestaurantName:     "Cantina da Nona",
		WebhookURL:         endpoint.URL,
		WebhookMaxAttempts: 1,
		ReminderHour:       18,
	}
	msgs := config.LoadMessages("")
	relay := services.NewWebhookRelay(db, cfg, msgs)
	env.monitor = services.NewEventMonitor(db, relay)
	reminders := services.NewReminderService(db, relay, cfg, msgs)

	env.db = db
	env.router = router.SetupRouter(db, msgs, reminders)
	return env
}

func (env *integrationEnv) do(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *integrationEnv) login(t *testing.T, name, email, role string) string {
	t.Helper()

	w := env.do("POST", "/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "senha123",
		"role":     role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/login", "", map[string]interface{}{
		"email":    email,
		"password": "senha123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Data.Token
}

func (env *integrationEnv) outboundStatuses() []string {
	env.mu.Lock()
	defer env.mu.Unlock()
	out := make([]string, len(env.outbound))
	copy(out, env.outbound)
	return out
}

// drainAndWait pumps the event queue and waits for the expected number
// of outbound webhook deliveries to land.
func (env *integrationEnv) drainAndWait(t *testing.T, expected int) {
	t.Helper()
	env.monitor.Drain()
	assert.Eventually(t, func() bool {
		return len(env.outboundStatuses()) >= expected
	}, testWaitTimeout, testWaitTick)
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	env := setupIntegration(t)

	kitchenToken := env.login(t, "Cozinha", "cozinha@restaurante.com", models.RoleKitchen)
	waiterToken := env.login(t, "Garçom", "garcom@restaurante.com", models.RoleWaiter)

	// Customer places an order through the chat platform.
	w := env.do("POST", "/webhook/orders", "", map[string]interface{}{
		"table_number":   "3",
		"customer_name":  "Diego",
		"customer_phone": "+5511999990000",
		"items": []map[string]interface{}{
			{"menu_item_id": 1, "quantity": 1},
			{"menu_item_id": 2, "quantity": 2},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var created struct {
		OrderID     string  `json:"order_id"`
		OrderNumber uint    `json:"order_number"`
		Total       float64 `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	assert.Equal(t, 20.00, created.Total)

	var order models.Order
	env.db.Where("public_id = ?", created.OrderID).First(&order)

	// The created event reaches staff and the customer.
	env.drainAndWait(t, 1)
	assert.Equal(t, []string{"pending"}, env.outboundStatuses())
	var notif models.Notification
	assert.NoError(t, env.db.Where("type = ?", models.EventOrderCreated).First(&notif).Error)
	assert.True(t, notif.HasRole(models.RoleWaiter))
	assert.True(t, notif.HasRole(models.RoleKitchen))

	// Kitchen confirms and starts preparing.
	base := fmt.Sprintf("/admin/orders/%d", order.ID)
	w = env.do("POST", base+"/confirm", kitchenToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.drainAndWait(t, 2)

	w = env.do("POST", base+"/start-preparing", kitchenToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The waiter cannot use kitchen-only endpoints.
	w = env.do("POST", base+"/ready", waiterToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Finishing the last item flips the order to ready on its own.
	var items []models.OrderItem
	env.db.Where("order_id = ?", order.ID).Find(&items)
	for _, it := range items {
		w = env.do("POST", fmt.Sprintf("/admin/order-items/%d/status", it.ID),
			kitchenToken, map[string]interface{}{"status": "done"})
		assert.Equal(t, http.StatusOK, w.Code)
	}
	env.db.First(&order, order.ID)
	assert.Equal(t, models.OrderStatusReady, order.Status)

	env.monitor.Drain()

	// Delivery is the waiter's job; the kitchen is rejected.
	w = env.do("POST", base+"/deliver", kitchenToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do("POST", base+"/deliver", waiterToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.monitor.Drain()

	// Every stage timestamp was stamped, in order.
	env.db.First(&order, order.ID)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	assert.NotNil(t, order.ConfirmedAt)
	assert.NotNil(t, order.PreparingAt)
	assert.NotNil(t, order.ReadyAt)
	assert.NotNil(t, order.DeliveredAt)
	assert.False(t, order.PreparingAt.Before(*order.ConfirmedAt))
	assert.False(t, order.ReadyAt.Before(*order.PreparingAt))
	assert.False(t, order.DeliveredAt.Before(*order.ReadyAt))

	// The customer sees the final snapshot through the webhook API.
	w = env.do("POST", "/webhook/orders/status", "", map[string]interface{}{
		"customer_phone": "+5511999990000",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Status        string `json:"status"`
		StatusMessage string `json:"status_message"`
	}
	json.Unmarshal(w.Body.Bytes(), &status)
	assert.Equal(t, models.OrderStatusDelivered, status.Status)
	assert.Equal(t, "Pedido entregue. Bom apetite!", status.StatusMessage)

	// Closed orders refuse further mutation.
	w = env.do("POST", "/webhook/orders/items", "", map[string]interface{}{
		"order_id": created.OrderID,
		"items":    []map[string]interface{}{{"menu_item_id": 1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Staff endpoints stay closed to anonymous callers.
	w = env.do("GET", "/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
