package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/config"
	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

// WebhookRelay POSTs lifecycle payloads to the configured endpoint of
// the chat-automation platform. Delivery is decoupled from the
// triggering mutation: the order state has already committed by the
// time a payload is built, and a delivery failure only ever produces a
// log line and, after the retry budget, a dead-letter row.
type WebhookRelay struct {
	DB             *gorm.DB
	Client         *http.Client
	URL            string
	RestaurantName string
	MaxAttempts    int
	Backoff        time.Duration
	Messages       *config.Messages
}

func NewWebhookRelay(db *gorm.DB, cfg *config.Config, msgs *config.Messages) *WebhookRelay {
	return &WebhookRelay{
		DB:             db,
		Client:         &http.Client{Timeout: 10 * time.Second},
		URL:            cfg.WebhookURL,
		RestaurantName: cfg.RestaurantName,
		MaxAttempts:    cfg.WebhookMaxAttempts,
		Backoff:        cfg.WebhookBackoff,
		Messages:       msgs,
	}
}

type payloadItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
}

type orderStatusPayload struct {
	Event           string        `json:"event"`
	OrderID         string        `json:"order_id"`
	OrderNumber     uint          `json:"order_number"`
	Status          string        `json:"status"`
	Message         string        `json:"message"`
	Items           []payloadItem `json:"items"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	TableNumber     string        `json:"table_number,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	RestaurantName  string        `json:"restaurant_name"`
	Timestamp       time.Time     `json:"timestamp"`
}

// SendOrderStatus relays an order_status_update event asynchronously.
func (r *WebhookRelay) SendOrderStatus(order *models.Order) {
	if r.URL == "" {
		utils.InfoLogger.Printf("webhook: no endpoint configured, skipping update for order #%d", order.OrderNumber)
		return
	}

	items := make([]payloadItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, payloadItem{
			Name:     it.Menu.Name,
			Quantity: it.Quantity,
			Status:   it.Status,
			Notes:    it.Notes,
		})
	}

	payload := orderStatusPayload{
		Event:           "order_status_update",
		OrderID:         order.PublicID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		Message:         r.Messages.StatusMessage(order.Status),
		Items:           items,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		TableNumber:     order.TableNumber,
		RejectionReason: order.RejectionReason,
		RestaurantName:  r.RestaurantName,
		Timestamp:       time.Now(),
	}

	orderID := order.ID
	go func() {
		if err := r.Send("order_status_update", payload, &orderID); err != nil {
			utils.ErrorLogger.Printf("webhook: giving up on order #%d: %v", order.OrderNumber, err)
		}
	}()
}

// Send delivers one event synchronously with bounded retry and
// backoff, writing a dead-letter row when the budget is exhausted.
func (r *WebhookRelay) Send(event string, payload interface{}, orderID *uint) error {
	if r.URL == "" {
		utils.InfoLogger.Printf("webhook: no endpoint configured, skipping %s", event)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = r.post(body)
		if lastErr == nil {
			return nil
		}
		utils.ErrorLogger.Printf("webhook: %s attempt %d/%d failed: %v", event, attempt, attempts, lastErr)
		if attempt < attempts {
			time.Sleep(r.Backoff * time.Duration(1<<(attempt-1)))
		}
	}

	dl := models.WebhookDeadLetter{
		Event:     event,
		OrderID:   orderID,
		Payload:   body,
		Attempts:  attempts,
		LastError: lastErr.Error(),
	}
	if err := r.DB.Create(&dl).Error; err != nil {
		utils.ErrorLogger.Printf("webhook: failed to record dead letter: %v", err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

func (r *WebhookRelay) post(body []byte) error {
	resp, err := r.Client.Post(r.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}
