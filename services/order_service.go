package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

// OrderService is the only path through which external callers create
// or change order contents. Callers may be untrusted and may retry, so
// every mutation here is an atomic, conditional update.
type OrderService struct {
	DB        *gorm.DB
	Lifecycle *LifecycleService
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db, Lifecycle: NewLifecycleService(db)}
}

// NewOrderItem is one requested line in a create/add-items call.
type NewOrderItem struct {
	MenuItemID uint   `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// NewOrder is the create-order input from the chat platform.
type NewOrder struct {
	TableNumber   string
	CustomerName  string
	CustomerPhone string
	OrderType     string
	Notes         string
	Items         []NewOrderItem
}

// OrderRef identifies an existing order by id, by human-facing number,
// or by the customer phone (which resolves to the most recent order).
type OrderRef struct {
	PublicID string
	Number   uint
	Phone    string
}

// AddItemsResult reports what an add-items call changed.
type AddItemsResult struct {
	Order           *models.Order
	ItemsAdded      int
	AdditionalTotal float64
}

// Create validates the request, snapshots catalog prices and creates
// the order plus its items as one atomic unit. An unknown menu item
// fails the whole call; prices are never guessed.
func (os *OrderService) Create(req NewOrder) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.CustomerPhone == "" {
		return nil, ErrMissingContact
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTypeDineIn
	}

	var order models.Order

	// The order number is read optimistically; its unique index catches
	// two concurrent creates, and the loser retries with a fresh number.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = os.DB.Transaction(func(tx *gorm.DB) error {
			priced, subtotal, perr := os.priceItems(tx, req.Items)
			if perr != nil {
				return perr
			}

			var next uint
			if err := tx.Raw("SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders").Scan(&next).Error; err != nil {
				return err
			}

			now := time.Now()
			order = models.Order{
				PublicID:      uuid.NewString(),
				OrderNumber:   next,
				Status:        models.OrderStatusPending,
				TableNumber:   req.TableNumber,
				CustomerName:  req.CustomerName,
				CustomerPhone: req.CustomerPhone,
				OrderType:     req.OrderType,
				Subtotal:      subtotal,
				Discount:      0,
				Total:         subtotal,
				Notes:         req.Notes,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			for i := range priced {
				priced[i].OrderID = order.ID
			}
			if err := tx.Create(&priced).Error; err != nil {
				return err
			}

			payload, _ := json.Marshal(map[string]interface{}{
				"order_id": order.ID,
				"to":       models.OrderStatusPending,
			})
			return tx.Create(&models.OrderEvent{
				OrderID:   order.ID,
				Type:      models.EventOrderCreated,
				Payload:   payload,
				CreatedAt: now,
			}).Error
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order #%d created for %s (total %s)",
		order.OrderNumber, order.CustomerPhone, utils.FormatCurrencyBRL(order.Total))

	if err := os.DB.Preload("Items").Preload("Items.Menu").First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// AddItems appends items to an open order. The subtotal/total increase
// is applied as a delta inside a single conditional UPDATE, so two
// concurrent calls both land regardless of interleaving.
func (os *OrderService) AddItems(ref OrderRef, items []NewOrderItem) (*AddItemsResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	var result AddItemsResult
	err := os.DB.Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, ref)
		if err != nil {
			return err
		}
		if order.IsClosed() {
			return ErrOrderClosed
		}

		priced, delta, perr := os.priceItems(tx, items)
		if perr != nil {
			return perr
		}

		for i := range priced {
			priced[i].OrderID = order.ID
		}
		if err := tx.Create(&priced).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status NOT IN ?", order.ID,
				[]string{models.OrderStatusDelivered, models.OrderStatusCancelled}).
			Updates(map[string]interface{}{
				"subtotal":   gorm.Expr("subtotal + ?", delta),
				"total":      gorm.Expr("total + ?", delta),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Closed between the read and the update.
			return ErrOrderClosed
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"order_id":         order.ID,
			"items_added":      len(priced),
			"additional_total": delta,
		})
		if err := tx.Create(&models.OrderEvent{
			OrderID:   order.ID,
			Type:      models.EventItemsAdded,
			Payload:   payload,
			CreatedAt: now,
		}).Error; err != nil {
			return err
		}

		var fresh models.Order
		if err := tx.Preload("Items").Preload("Items.Menu").First(&fresh, order.ID).Error; err != nil {
			return err
		}
		result = AddItemsResult{
			Order:           &fresh,
			ItemsAdded:      len(priced),
			AdditionalTotal: delta,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order #%d: %d item(s) added (+%s)",
		result.Order.OrderNumber, result.ItemsAdded, utils.FormatCurrencyBRL(result.AdditionalTotal))
	return &result, nil
}

// Cancel cancels an open order. Orders already in preparation or later
// need a human: the call fails with ErrRequiresApproval and leaves the
// order untouched. Re-cancelling a cancelled order reports success,
// since the desired end state already holds. Both decisions are made
// by the lifecycle service on the status it reads transactionally, so
// a status change racing this call never mislabels the outcome.
func (os *OrderService) Cancel(ref OrderRef, reason string) (*models.Order, error) {
	order, err := findOrder(os.DB, ref)
	if err != nil {
		return nil, err
	}
	return os.Lifecycle.Transition(order.ID, models.OrderStatusCancelled, reason)
}

// Find resolves an order reference, preloading items.
func (os *OrderService) Find(ref OrderRef) (*models.Order, error) {
	return findOrder(os.DB, ref)
}

// OpenOrdersForTable lists the non-terminal orders at a table, oldest
// first.
func (os *OrderService) OpenOrdersForTable(tableNumber string) ([]models.Order, error) {
	var orders []models.Order
	err := os.DB.Preload("Items").Preload("Items.Menu").
		Where("table_number = ? AND status NOT IN ?", tableNumber,
			[]string{models.OrderStatusDelivered, models.OrderStatusCancelled}).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// priceItems snapshots current catalog prices for the requested items.
func (os *OrderService) priceItems(tx *gorm.DB, items []NewOrderItem) ([]models.OrderItem, float64, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: menu item %d", ErrInvalidQuantity, it.MenuItemID)
		}
		ids = append(ids, it.MenuItemID)
	}

	var menus []models.Menu
	if err := tx.Where("id IN ?", ids).Find(&menus).Error; err != nil {
		return nil, 0, err
	}
	priceByID := make(map[uint]float64, len(menus))
	for _, m := range menus {
		priceByID[m.ID] = m.Price
	}

	now := time.Now()
	priced := make([]models.OrderItem, 0, len(items))
	var subtotal float64
	for _, it := range items {
		price, ok := priceByID[it.MenuItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: id %d", ErrUnknownMenuItem, it.MenuItemID)
		}
		lineTotal := price * float64(it.Quantity)
		subtotal += lineTotal
		priced = append(priced, models.OrderItem{
			MenuID:     it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  price,
			TotalPrice: lineTotal,
			Notes:      it.Notes,
			Status:     models.ItemStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return priced, subtotal, nil
}

func findOrder(tx *gorm.DB, ref OrderRef) (*models.Order, error) {
	q := tx.Preload("Items").Preload("Items.Menu")

	var order models.Order
	var err error
	switch {
	case ref.PublicID != "":
		err = q.Where("public_id = ?", ref.PublicID).First(&order).Error
	case ref.Number != 0:
		err = q.Where("order_number = ?", ref.Number).First(&order).Error
	case ref.Phone != "":
		// A phone with several historical orders resolves to the most
		// recently created one.
		err = q.Where("customer_phone = ?", ref.Phone).
			Order("created_at desc, id desc").First(&order).Error
	default:
		return nil, ErrOrderNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
