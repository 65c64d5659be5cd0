package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/config"
	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/services"
	"github.com/pedidoflow/restaurante-app/utils"
)

// WebhookController is the inbound half of the relay: every
// customer-initiated action the chat-automation platform can send.
// Responses use the {success, ...} envelope the platform expects, and
// every handler is safe against duplicate delivery.
type WebhookController struct {
	DB         *gorm.DB
	Orders     *services.OrderService
	Dispatcher *services.Dispatcher
	Messages   *config.Messages
}

func NewWebhookController(db *gorm.DB, msgs *config.Messages) *WebhookController {
	return &WebhookController{
		DB:         db,
		Orders:     services.NewOrderService(db),
		Dispatcher: services.NewDispatcher(db),
		Messages:   msgs,
	}
}

// orderRef is the common way inbound payloads identify an order.
type orderRef struct {
	OrderID       string `json:"order_id"`
	OrderNumber   uint   `json:"order_number"`
	CustomerPhone string `json:"customer_phone"`
}

func (r orderRef) toService() services.OrderRef {
	return services.OrderRef{PublicID: r.OrderID, Number: r.OrderNumber, Phone: r.CustomerPhone}
}

// respondServiceError maps the service error taxonomy onto HTTP codes
// and the localized message catalog.
func (wc *WebhookController) respondServiceError(c *gin.Context, err error) {
	key := services.ErrorKey(err)
	msg := wc.Messages.ErrorMessage(key)

	code := http.StatusInternalServerError
	extra := gin.H{}
	switch key {
	case "empty_items", "missing_contact", "invalid_quantity":
		code = http.StatusBadRequest
	case "order_not_found":
		code = http.StatusNotFound
	case "unknown_menu_item":
		code = http.StatusUnprocessableEntity
	case "order_closed", "invalid_transition":
		code = http.StatusConflict
	case "requires_approval":
		code = http.StatusConflict
		extra["requires_approval"] = true
	}
	utils.RespondWebhookError(c, code, msg, extra)
}

// CreateOrder -> order.create
func (wc *WebhookController) CreateOrder(c *gin.Context) {
	var body struct {
		TableNumber   string                  `json:"table_number"`
		CustomerName  string                  `json:"customer_name"`
		CustomerPhone string                  `json:"customer_phone"`
		OrderType     string                  `json:"order_type"`
		Items         []services.NewOrderItem `json:"items"`
		Notes         string                  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	order, err := wc.Orders.Create(services.NewOrder{
		TableNumber:   body.TableNumber,
		CustomerName:  body.CustomerName,
		CustomerPhone: body.CustomerPhone,
		OrderType:     body.OrderType,
		Notes:         body.Notes,
		Items:         body.Items,
	})
	if err != nil {
		wc.respondServiceError(c, err)
		return
	}

	utils.RespondWebhook(c, gin.H{
		"order_id":     order.PublicID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"total":        order.Total,
	})
}

// AddItems -> order.add_items
func (wc *WebhookController) AddItems(c *gin.Context) {
	var body struct {
		orderRef
		Items []services.NewOrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := wc.Orders.AddItems(body.toService(), body.Items)
	if err != nil {
		wc.respondServiceError(c, err)
		return
	}

	utils.RespondWebhook(c, gin.H{
		"items_added":      result.ItemsAdded,
		"additional_total": result.AdditionalTotal,
		"new_total":        result.Order.Total,
	})
}

// CancelOrder -> order.cancel
func (wc *WebhookController) CancelOrder(c *gin.Context) {
	var body struct {
		orderRef
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	order, err := wc.Orders.Cancel(body.toService(), body.Reason)
	if err != nil {
		wc.respondServiceError(c, err)
		return
	}

	utils.RespondWebhook(c, gin.H{
		"order_id":     order.PublicID,
		"order_number": order.OrderNumber,
	})
}

// OrderStatus -> order.status (read-only snapshot)
func (wc *WebhookController) OrderStatus(c *gin.Context) {
	var body orderRef
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	order, err := wc.Orders.Find(body.toService())
	if err != nil {
		wc.respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, gin.H{
			"name":     it.Menu.Name,
			"quantity": it.Quantity,
			"status":   it.Status,
			"notes":    it.Notes,
		})
	}

	utils.RespondWebhook(c, gin.H{
		"order_id":        order.PublicID,
		"order_number":    order.OrderNumber,
		"status":          order.Status,
		"status_message":  wc.Messages.StatusMessage(order.Status),
		"table_number":    order.TableNumber,
		"customer_name":   order.CustomerName,
		"total":           order.Total,
		"items":           items,
		"waiting_minutes": order.WaitingMinutes(time.Now()),
		"created_at":      order.CreatedAt,
	})
}

// TableStatus -> table.status: all open orders at a table with item
// completion progress.
func (wc *WebhookController) TableStatus(c *gin.Context) {
	var body struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	orders, err := wc.Orders.OpenOrdersForTable(body.TableNumber)
	if err != nil {
		wc.respondServiceError(c, err)
		return
	}

	list := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		done, total := o.ItemProgress()
		list = append(list, gin.H{
			"order_id":     o.PublicID,
			"order_number": o.OrderNumber,
			"status":       o.Status,
			"total":        o.Total,
			"progress":     gin.H{"done": done, "total": total},
		})
	}

	utils.RespondWebhook(c, gin.H{
		"table_number": body.TableNumber,
		"orders":       list,
	})
}

// GetMenu -> menu.get (read-only catalog query)
func (wc *WebhookController) GetMenu(c *gin.Context) {
	var menus []models.Menu
	if err := wc.DB.Preload("Category").
		Where("available = ?", true).
		Order("category_id asc, name asc").
		Find(&menus).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}
	utils.RespondWebhook(c, gin.H{"menu": menus})
}

// GetRecommendations -> menu.recommendations
func (wc *WebhookController) GetRecommendations(c *gin.Context) {
	var menus []models.Menu
	if err := wc.DB.Preload("Category").
		Where("available = ? AND featured = ?", true, true).
		Order("name asc").
		Find(&menus).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}
	utils.RespondWebhook(c, gin.H{"recommendations": menus})
}

// CallWaiter -> waiter.call
func (wc *WebhookController) CallWaiter(c *gin.Context) {
	var body struct {
		TableNumber   string `json:"table_number" binding:"required"`
		CustomerPhone string `json:"customer_phone"`
		Reason        string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	call := models.ServiceCall{
		TableNumber:   body.TableNumber,
		CustomerPhone: body.CustomerPhone,
		Reason:        body.Reason,
	}
	if err := wc.DB.Create(&call).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}

	wc.Dispatcher.Notify("waiter_call", services.RouteWaiterCall(body.TableNumber, body.Reason),
		map[string]interface{}{"call_id": call.ID, "table_number": body.TableNumber, "phone": body.CustomerPhone})

	utils.RespondWebhook(c, gin.H{
		"call_id": call.ID,
		"message": wc.Messages.Reply("waiter_called"),
	})
}

// RequestBill -> bill.request. Receiving it twice is harmless: each
// call just (re)raises the staff notification.
func (wc *WebhookController) RequestBill(c *gin.Context) {
	var body struct {
		orderRef
		TableNumber string `json:"table_number"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	req := models.BillRequest{
		TableNumber:   body.TableNumber,
		CustomerPhone: body.CustomerPhone,
	}
	tableNumber := body.TableNumber
	if order, err := wc.Orders.Find(body.toService()); err == nil {
		req.OrderID = &order.ID
		if tableNumber == "" {
			tableNumber = order.TableNumber
		}
	}
	if err := wc.DB.Create(&req).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}

	wc.Dispatcher.Notify("bill_request", services.RouteBillRequest(tableNumber),
		map[string]interface{}{"request_id": req.ID, "table_number": tableNumber})

	utils.RespondWebhook(c, gin.H{
		"request_id": req.ID,
		"message":    wc.Messages.Reply("bill_requested"),
	})
}

// AskQuestion -> question.ask
func (wc *WebhookController) AskQuestion(c *gin.Context) {
	var body struct {
		TableNumber   string `json:"table_number"`
		CustomerPhone string `json:"customer_phone"`
		Category      string `json:"category"`
		Text          string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if body.Category == "" {
		body.Category = models.QuestionCategoryGeneral
	}

	q := models.Question{
		TableNumber:   body.TableNumber,
		CustomerPhone: body.CustomerPhone,
		Category:      body.Category,
		Text:          body.Text,
	}
	if err := wc.DB.Create(&q).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}

	wc.Dispatcher.Notify("customer_question", services.RouteQuestion(body.Category, body.Text),
		map[string]interface{}{"question_id": q.ID, "table_number": body.TableNumber, "phone": body.CustomerPhone})

	utils.RespondWebhook(c, gin.H{
		"question_id": q.ID,
		"message":     wc.Messages.Reply("question_sent"),
	})
}

// FileComplaint -> complaint.file
func (wc *WebhookController) FileComplaint(c *gin.Context) {
	var body struct {
		orderRef
		TableNumber string `json:"table_number"`
		Urgency     string `json:"urgency"`
		Text        string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if body.Urgency == "" {
		body.Urgency = models.UrgencyNormal
	}

	complaint := models.Complaint{
		TableNumber:   body.TableNumber,
		CustomerPhone: body.CustomerPhone,
		Urgency:       body.Urgency,
		Text:          body.Text,
	}
	if order, err := wc.Orders.Find(body.toService()); err == nil {
		complaint.OrderID = &order.ID
	}
	if err := wc.DB.Create(&complaint).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}

	wc.Dispatcher.Notify("customer_complaint", services.RouteComplaint(body.Urgency, body.Text),
		map[string]interface{}{"complaint_id": complaint.ID, "phone": body.CustomerPhone, "urgency": body.Urgency})

	utils.RespondWebhook(c, gin.H{
		"complaint_id": complaint.ID,
		"message":      wc.Messages.Reply("complaint_sent"),
	})
}

// SubmitRating -> rating.submit
func (wc *WebhookController) SubmitRating(c *gin.Context) {
	var body struct {
		orderRef
		OverallRating int    `json:"overall_rating" binding:"required,min=1,max=5"`
		FoodRating    *int   `json:"food_rating"`
		ServiceRating *int   `json:"service_rating"`
		Comment       string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rating := models.Rating{
		CustomerPhone: body.CustomerPhone,
		OverallRating: body.OverallRating,
		FoodRating:    body.FoodRating,
		ServiceRating: body.ServiceRating,
		Comment:       body.Comment,
	}
	if order, err := wc.Orders.Find(body.toService()); err == nil {
		rating.OrderID = &order.ID
	}
	if err := wc.DB.Create(&rating).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}

	wc.Dispatcher.Notify("customer_rating", services.RouteRating(body.OverallRating, body.Comment),
		map[string]interface{}{"rating_id": rating.ID, "overall_rating": body.OverallRating})

	utils.RespondWebhook(c, gin.H{
		"rating_id": rating.ID,
		"message":   wc.Messages.Reply("rating_sent"),
	})
}

// SubmitSuggestion -> suggestion.submit
func (wc *WebhookController) SubmitSuggestion(c *gin.Context) {
	var body struct {
		CustomerPhone string `json:"customer_phone"`
		Text          string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondWebhookError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s := models.Suggestion{
		CustomerPhone: body.CustomerPhone,
		Text:          body.Text,
	}
	if err := wc.DB.Create(&s).Error; err != nil {
		utils.RespondWebhookError(c, http.StatusInternalServerError, wc.Messages.ErrorMessage("internal"), nil)
		return
	}

	wc.Dispatcher.Notify("customer_suggestion", services.RouteSuggestion(body.Text),
		map[string]interface{}{"suggestion_id": s.ID, "phone": body.CustomerPhone})

	utils.RespondWebhook(c, gin.H{
		"suggestion_id": s.ID,
		"message":       wc.Messages.Reply("suggestion_sent"),
	})
}
