package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/realtime"
	"github.com/pedidoflow/restaurante-app/services"
	"github.com/pedidoflow/restaurante-app/utils"
)

// OrderController serves the staff-facing order surfaces: kitchen and
// waiter displays, lifecycle advancement, per-item progress.
type OrderController struct {
	DB        *gorm.DB
	Lifecycle *services.LifecycleService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db, Lifecycle: services.NewLifecycleService(db)}
}

// GetAllOrders -> list orders with items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	q := oc.DB.Preload("Items").Preload("Items.Menu")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail of one order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("Items").Preload("Items.Menu").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// transition advances an order and maps service errors to HTTP codes.
func (oc *OrderController) transition(c *gin.Context, newStatus, reason string) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	order, err := oc.Lifecycle.Transition(uint(id), newStatus, reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrInvalidTransition),
			errors.Is(err, services.ErrRequiresApproval):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Order %s", newStatus), order)
}

// ConfirmOrder -> pending => confirmed
func (oc *OrderController) ConfirmOrder(c *gin.Context) {
	oc.transition(c, models.OrderStatusConfirmed, "")
}

// StartPreparing -> confirmed => preparing
func (oc *OrderController) StartPreparing(c *gin.Context) {
	oc.transition(c, models.OrderStatusPreparing, "")
}

// MarkReady -> preparing => ready
func (oc *OrderController) MarkReady(c *gin.Context) {
	oc.transition(c, models.OrderStatusReady, "")
}

// MarkDelivered -> ready => delivered
func (oc *OrderController) MarkDelivered(c *gin.Context) {
	oc.transition(c, models.OrderStatusDelivered, "")
}

// RejectOrder -> staff cancellation; a reason is required.
func (oc *OrderController) RejectOrder(c *gin.Context) {
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	oc.transition(c, models.OrderStatusCancelled, body.Reason)
}

// UpdateItemStatus -> kitchen marks one item done (or back to
// pending). When the last item is done on a preparing order, the order
// itself moves to ready.
func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	itemID := c.Param("item_id")

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Status != models.ItemStatusPending && body.Status != models.ItemStatusDone {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown item status %q", body.Status))
		return
	}

	var item models.OrderItem
	if err := oc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := oc.DB.Model(&models.OrderItem{}).
		Where("id = ?", item.ID).
		Update("status", body.Status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	item.Status = body.Status

	var order models.Order
	if err := oc.DB.First(&order, item.OrderID).Error; err == nil {
		realtime.BroadcastItemUpdate(item, order.PublicID)

		if body.Status == models.ItemStatusDone && order.Status == models.OrderStatusPreparing {
			var pending int64
			oc.DB.Model(&models.OrderItem{}).
				Where("order_id = ? AND status != ?", item.OrderID, models.ItemStatusDone).
				Count(&pending)
			if pending == 0 {
				if _, err := oc.Lifecycle.Transition(order.ID, models.OrderStatusReady, ""); err != nil {
					utils.ErrorLogger.Printf("auto-ready for order #%d failed: %v", order.OrderNumber, err)
				}
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}

// GetKitchenDisplay -> overview for the kitchen display
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleKitchen && role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("Items").
		Preload("Items.Menu").
		Where("status IN ?", []string{
			models.OrderStatusConfirmed,
			models.OrderStatusPreparing,
			models.OrderStatusReady,
		}).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen display orders", orders)
}

// GetPendingItems -> items still to cook, oldest first
func (oc *OrderController) GetPendingItems(c *gin.Context) {
	role, _ := c.Get("role")
	if role != models.RoleKitchen && role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var items []models.OrderItem
	if err := oc.DB.Preload("Menu").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.status = ? AND orders.status IN ?",
			models.ItemStatusPending,
			[]string{models.OrderStatusConfirmed, models.OrderStatusPreparing}).
		Order("order_items.created_at asc").
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending items", items)
}
