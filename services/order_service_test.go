package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pedidoflow/restaurante-app/models"
)

func TestCreateOrderSnapshotsPricesAndTotals(t *testing.T) {
	db := openTestDB(t, "orders_create")
	svc := NewOrderService(db)

	burgerID := seedMenu(t, db, "X-Burger", 10.00)
	juiceID := seedMenu(t, db, "Suco de Laranja", 5.00)

	order, err := svc.Create(NewOrder{
		TableNumber:   "12",
		CustomerName:  "Bruno",
		CustomerPhone: "+5511977770000",
		Items: []NewOrderItem{
			{MenuItemID: burgerID, Quantity: 2},
			{MenuItemID: juiceID, Quantity: 1, Notes: "sem gelo"},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, uint(1), order.OrderNumber)
	assert.NotEmpty(t, order.PublicID)
	assert.Equal(t, 25.00, order.Subtotal)
	assert.Equal(t, 25.00, order.Total)
	assert.Len(t, order.Items, 2)

	// Catalog price changes must not touch existing rows.
	db.Model(&models.Menu{}).Where("id = ?", burgerID).Update("price", 99.00)
	fresh, err := svc.Find(OrderRef{PublicID: order.PublicID})
	assert.NoError(t, err)
	assert.Equal(t, 25.00, fresh.Total)
	for _, it := range fresh.Items {
		if it.MenuID == burgerID {
			assert.Equal(t, 10.00, it.UnitPrice)
		}
	}

	second, err := svc.Create(NewOrder{
		CustomerPhone: "+5511977770001",
		OrderType:     models.OrderTypeTakeout,
		Items:         []NewOrderItem{{MenuItemID: juiceID, Quantity: 1}},
	})
	assert.NoError(t, err)
	assert.Equal(t, uint(2), second.OrderNumber, "order numbers must increment")
}

func TestCreateOrderValidation(t *testing.T) {
	db := openTestDB(t, "orders_validation")
	svc := NewOrderService(db)
	menuID := seedMenu(t, db, "Pizza Margherita", 30.00)

	_, err := svc.Create(NewOrder{CustomerPhone: "+5511977770000"})
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = svc.Create(NewOrder{
		Items: []NewOrderItem{{MenuItemID: menuID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMissingContact)

	_, err = svc.Create(NewOrder{
		CustomerPhone: "+5511977770000",
		Items:         []NewOrderItem{{MenuItemID: menuID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// An unknown menu item fails the whole order; nothing is guessed.
	_, err = svc.Create(NewOrder{
		CustomerPhone: "+5511977770000",
		Items: []NewOrderItem{
			{MenuItemID: menuID, Quantity: 1},
			{MenuItemID: 4242, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, ErrUnknownMenuItem)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count, "failed creates must leave nothing behind")
}

func TestAddItemsAppliesDelta(t *testing.T) {
	db := openTestDB(t, "orders_additems")
	svc := NewOrderService(db)

	burgerID := seedMenu(t, db, "X-Salada", 20.00)
	friesID := seedMenu(t, db, "Batata Frita", 10.00)

	order, err := svc.Create(NewOrder{
		CustomerPhone: "+5511966660000",
		Items:         []NewOrderItem{{MenuItemID: burgerID, Quantity: 1}},
	})
	assert.NoError(t, err)

	res, err := svc.AddItems(OrderRef{PublicID: order.PublicID},
		[]NewOrderItem{{MenuItemID: friesID, Quantity: 1}})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.ItemsAdded)
	assert.Equal(t, 10.00, res.AdditionalTotal)
	assert.Equal(t, 30.00, res.Order.Total)

	res, err = svc.AddItems(OrderRef{Number: order.OrderNumber},
		[]NewOrderItem{{MenuItemID: friesID, Quantity: 2, Notes: "bem passada"}})
	assert.NoError(t, err)
	assert.Equal(t, 50.00, res.Order.Total)
	assert.Len(t, res.Order.Items, 3)

	var ev int64
	db.Model(&models.OrderEvent{}).
		Where("order_id = ? AND type = ?", order.ID, models.EventItemsAdded).
		Count(&ev)
	assert.Equal(t, int64(2), ev)
}

func TestConcurrentAddItemsConverge(t *testing.T) {
	db := openTestDB(t, "orders_concurrent")
	svc := NewOrderService(db)

	baseID := seedMenu(t, db, "Prato do Dia", 20.00)
	sideID := seedMenu(t, db, "Farofa", 10.00)
	dessertID := seedMenu(t, db, "Pudim", 15.00)

	order, err := svc.Create(NewOrder{
		CustomerPhone: "+5511944440001",
		Items:         []NewOrderItem{{MenuItemID: baseID, Quantity: 1}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 20.00, order.Subtotal)

	// Two racing adds must both land: the delta update is commutative,
	// so no interleaving can lose one of them.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, menuID := range []uint{sideID, dessertID} {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.AddItems(OrderRef{PublicID: order.PublicID},
				[]NewOrderItem{{MenuItemID: id, Quantity: 1}})
			errs <- err
		}(menuID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	fresh, err := svc.Find(OrderRef{PublicID: order.PublicID})
	assert.NoError(t, err)
	assert.Equal(t, 45.00, fresh.Subtotal)
	assert.Equal(t, 45.00, fresh.Total)
	assert.Len(t, fresh.Items, 3)
}

func TestAddItemsRejectsClosedOrders(t *testing.T) {
	db := openTestDB(t, "orders_closed")
	svc := NewOrderService(db)
	menuID := seedMenu(t, db, "Lasanha", 40.00)

	for i, status := range []string{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		order := makeOrder(t, db, status, uint(i+1))

		_, err := svc.AddItems(OrderRef{PublicID: order.PublicID},
			[]NewOrderItem{{MenuItemID: menuID, Quantity: 1}})
		assert.ErrorIs(t, err, ErrOrderClosed)

		var fresh models.Order
		db.First(&fresh, order.ID)
		assert.Equal(t, order.Total, fresh.Total, "a rejected add must not change totals")
	}
}

func TestCancelPolicy(t *testing.T) {
	db := openTestDB(t, "orders_cancel")
	svc := NewOrderService(db)

	// pending and confirmed cancel directly.
	for i, status := range []string{models.OrderStatusPending, models.OrderStatusConfirmed} {
		order := makeOrder(t, db, status, uint(i+1))
		cancelled, err := svc.Cancel(OrderRef{PublicID: order.PublicID}, "sem tempo")
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	}

	// preparing and later need staff approval; the order is untouched.
	for i, status := range []string{models.OrderStatusPreparing, models.OrderStatusReady, models.OrderStatusDelivered} {
		order := makeOrder(t, db, status, uint(i+10))
		_, err := svc.Cancel(OrderRef{PublicID: order.PublicID}, "")
		assert.ErrorIs(t, err, ErrRequiresApproval)

		var fresh models.Order
		db.First(&fresh, order.ID)
		assert.Equal(t, status, fresh.Status)
		assert.Nil(t, fresh.RejectionReason)
	}

	// Cancelling twice reports success both times.
	order := makeOrder(t, db, models.OrderStatusPending, 20)
	_, err := svc.Cancel(OrderRef{PublicID: order.PublicID}, "")
	assert.NoError(t, err)
	again, err := svc.Cancel(OrderRef{PublicID: order.PublicID}, "")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)
}

func TestFindByPhoneReturnsMostRecent(t *testing.T) {
	db := openTestDB(t, "orders_phone")
	svc := NewOrderService(db)
	menuID := seedMenu(t, db, "Caipirinha", 15.00)

	phone := "+5511955550000"
	_, err := svc.Create(NewOrder{
		CustomerPhone: phone,
		Items:         []NewOrderItem{{MenuItemID: menuID, Quantity: 1}},
	})
	assert.NoError(t, err)

	second, err := svc.Create(NewOrder{
		CustomerPhone: phone,
		Items:         []NewOrderItem{{MenuItemID: menuID, Quantity: 2}},
	})
	assert.NoError(t, err)

	found, err := svc.Find(OrderRef{Phone: phone})
	assert.NoError(t, err)
	assert.Equal(t, second.OrderNumber, found.OrderNumber)

	_, err = svc.Find(OrderRef{Phone: "+5500000000000"})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.Find(OrderRef{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOpenOrdersForTable(t *testing.T) {
	db := openTestDB(t, "orders_table")
	svc := NewOrderService(db)

	open := makeOrder(t, db, models.OrderStatusPreparing, 1)
	open.TableNumber = "7"
	db.Save(open)

	closed := makeOrder(t, db, models.OrderStatusDelivered, 2)
	closed.TableNumber = "7"
	db.Save(closed)

	elsewhere := makeOrder(t, db, models.OrderStatusPending, 3)
	elsewhere.TableNumber = "8"
	db.Save(elsewhere)

	orders, err := svc.OpenOrdersForTable("7")
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, open.OrderNumber, orders[0].OrderNumber)
}
