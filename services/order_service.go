package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/scope"
	"github.com/comandapos/comanda-app/utils"
)

// OrderService drives the order state machine: open -> closed and
// open -> cancelled, with totals recomputed from the line items on
// every mutation. Each mutate-then-recalculate sequence runs under a
// per-order lock inside one transaction.
type OrderService struct {
	db         *gorm.DB
	hub        events.Publisher
	locks      *idLocks
	tableLocks *idLocks
}

func NewOrderService(db *gorm.DB, hub events.Publisher) *OrderService {
	return &OrderService{db: db, hub: hub, locks: newIDLocks(), tableLocks: newIDLocks()}
}

type CreateOrderInput struct {
	OrderNumber  string `json:"order_number"`
	TableID      *uint  `json:"table_id"`
	WaiterID     *uint  `json:"waiter_id"`
	CustomerID   *uint  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	OrderType    string `json:"order_type"`
	Notes        string `json:"notes"`
}

type AddItemInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// Create opens an order. Order creation and table occupation are one
// atomic unit; a reader never sees one without the other.
func (s *OrderService) Create(tenantID string, in CreateOrderInput) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if in.OrderNumber == "" {
		return nil, apperr.Validationf("order number is required")
	}
	orderType := in.OrderType
	if orderType == "" {
		orderType = models.OrderTypeDineIn
	}
	switch orderType {
	case models.OrderTypeDineIn, models.OrderTypeTakeout, models.OrderTypeDelivery:
	default:
		return nil, apperr.Validationf("unknown order type '%s'", orderType)
	}

	// Serialize opens per table: the occupancy check and the occupy
	// write are check-then-act, and a consistent-read transaction alone
	// would let two concurrent opens both see the table available.
	if in.TableID != nil {
		unlock := s.tableLocks.lock(*in.TableID)
		defer unlock()
	}

	var (
		order models.Order
		table *models.Table
	)
	err = sc.Transaction(func(tx *scope.Scoped) error {
		if in.TableID != nil {
			var t models.Table
			if err := tx.First(&t, scope.Where{"id": *in.TableID}); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("table %d not found", *in.TableID)
				}
				return err
			}
			if t.Status == models.TableStatusOccupied {
				return apperr.Conflictf("table '%s' is already occupied", t.TableNumber)
			}
		}

		dup, err := tx.Count(&models.Order{}, scope.Where{"order_number": in.OrderNumber})
		if err != nil {
			return err
		}
		if dup > 0 {
			return apperr.Conflictf("order '%s' already exists", in.OrderNumber)
		}

		order = models.Order{
			OrderNumber:  in.OrderNumber,
			TableID:      in.TableID,
			WaiterID:     in.WaiterID,
			CustomerID:   in.CustomerID,
			CustomerName: in.CustomerName,
			Status:       models.OrderStatusOpen,
			OrderType:    orderType,
			Subtotal:     decimal.Zero,
			Discount:     decimal.Zero,
			Tax:          decimal.Zero,
			Total:        decimal.Zero,
			Notes:        in.Notes,
			OpenedAt:     time.Now(),
		}
		if err := tx.Create(&order); err != nil {
			return err
		}

		if in.TableID != nil {
			if err := tx.Updates(&models.Table{}, scope.Where{"id": *in.TableID},
				map[string]interface{}{"status": models.TableStatusOccupied}); err != nil {
				return err
			}
			var t models.Table
			if err := tx.First(&t, scope.Where{"id": *in.TableID}); err != nil {
				return err
			}
			table = &t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("order %s opened (tenant=%s)", order.OrderNumber, tenantID)
	s.hub.Publish(tenantID, events.EventOrderUpdate, order)
	if table != nil {
		s.hub.Publish(tenantID, events.EventTableUpdate, *table)
	}
	return &order, nil
}

// AddItem appends a line item to an open order, snapshotting the
// product's current price as the item's unit price.
func (s *OrderService) AddItem(tenantID string, orderID uint, in AddItemInput) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if in.Quantity < 1 {
		return nil, apperr.Validationf("quantity must be at least 1")
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	err = sc.Transaction(func(tx *scope.Scoped) error {
		order, err := currentOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Terminal() {
			return apperr.IllegalStatef("cannot add items to a %s order", order.Status)
		}

		var product models.Product
		if err := tx.First(&product, scope.Where{"id": in.ProductID}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product %d not found", in.ProductID)
			}
			return err
		}
		if !product.IsActive || !product.IsAvailable {
			return apperr.Validationf("product '%s' is not available for sale", product.Name)
		}

		qty := decimal.NewFromInt(int64(in.Quantity))
		item := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
			Subtotal:  product.Price.Mul(qty).Round(2),
			Status:    models.OrderItemStatusPending,
			Notes:     in.Notes,
		}
		if err := tx.Create(&item); err != nil {
			return err
		}
		return s.recalculate(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.publishAndGet(tenantID, orderID, events.EventOrderUpdate)
}

// UpdateItemQuantity recomputes the item subtotal from the snapshotted
// unit price; the catalog is not consulted again.
func (s *OrderService) UpdateItemQuantity(tenantID string, orderID, itemID uint, quantity int) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperr.Validationf("quantity must be at least 1")
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	err = sc.Transaction(func(tx *scope.Scoped) error {
		order, err := currentOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Terminal() {
			return apperr.IllegalStatef("cannot change items of a %s order", order.Status)
		}

		var item models.OrderItem
		if err := tx.First(&item, scope.Where{"id": itemID, "order_id": orderID}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order item %d not found", itemID)
			}
			return err
		}

		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
		if err := tx.Updates(&models.OrderItem{}, scope.Where{"id": itemID},
			map[string]interface{}{"quantity": quantity, "subtotal": subtotal}); err != nil {
			return err
		}
		return s.recalculate(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.publishAndGet(tenantID, orderID, events.EventOrderUpdate)
}

func (s *OrderService) RemoveItem(tenantID string, orderID, itemID uint) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	err = sc.Transaction(func(tx *scope.Scoped) error {
		order, err := currentOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Terminal() {
			return apperr.IllegalStatef("cannot change items of a %s order", order.Status)
		}

		n, err := tx.Count(&models.OrderItem{}, scope.Where{"id": itemID, "order_id": orderID})
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("order item %d not found", itemID)
		}

		if err := tx.Delete(&models.OrderItem{}, scope.Where{"id": itemID, "order_id": orderID}); err != nil {
			return err
		}
		return s.recalculate(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.publishAndGet(tenantID, orderID, events.EventOrderUpdate)
}

// ApplyDiscount sets an absolute discount amount and recalculates.
// Applying the same discount twice is idempotent.
func (s *OrderService) ApplyDiscount(tenantID string, orderID uint, discount decimal.Decimal) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if discount.IsNegative() {
		return nil, apperr.Validationf("discount cannot be negative")
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	err = sc.Transaction(func(tx *scope.Scoped) error {
		order, err := currentOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Terminal() {
			return apperr.IllegalStatef("cannot apply a discount to a %s order", order.Status)
		}

		if err := tx.Updates(&models.Order{}, scope.Where{"id": orderID},
			map[string]interface{}{"discount": discount}); err != nil {
			return err
		}
		order.Discount = discount
		return s.recalculate(tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.publishAndGet(tenantID, orderID, events.EventOrderUpdate)
}

// Close is irreversible. The status change and the table release are
// one atomic unit.
func (s *OrderService) Close(tenantID string, orderID uint) (*models.Order, error) {
	return s.finish(tenantID, orderID, models.OrderStatusClosed)
}

// Cancel behaves like Close for table release but marks the order
// cancelled. A closed order cannot be cancelled.
func (s *OrderService) Cancel(tenantID string, orderID uint) (*models.Order, error) {
	return s.finish(tenantID, orderID, models.OrderStatusCancelled)
}

func (s *OrderService) finish(tenantID string, orderID uint, target string) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	var table *models.Table
	err = sc.Transaction(func(tx *scope.Scoped) error {
		order, err := currentOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Terminal() {
			if target == models.OrderStatusClosed {
				return apperr.IllegalStatef("order is already %s", order.Status)
			}
			return apperr.IllegalStatef("cannot cancel a %s order", order.Status)
		}

		now := time.Now()
		if err := tx.Updates(&models.Order{}, scope.Where{"id": orderID},
			map[string]interface{}{"status": target, "closed_at": now}); err != nil {
			return err
		}

		if order.TableID != nil {
			if err := tx.Updates(&models.Table{}, scope.Where{"id": *order.TableID},
				map[string]interface{}{"status": models.TableStatusAvailable}); err != nil {
				return err
			}
			var t models.Table
			if err := tx.First(&t, scope.Where{"id": *order.TableID}); err != nil {
				return err
			}
			table = &t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := events.EventOrderClosed
	if target == models.OrderStatusCancelled {
		event = events.EventOrderCancelled
	}
	order, err := s.publishAndGet(tenantID, orderID, event)
	if err != nil {
		return nil, err
	}
	if table != nil {
		s.hub.Publish(tenantID, events.EventTableUpdate, *table)
	}
	utils.InfoLogger.Printf("order %s %s (tenant=%s)", order.OrderNumber, target, tenantID)
	return order, nil
}

// Get returns the order with its items, products and table preloaded.
func (s *OrderService) Get(tenantID string, orderID uint) (*models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = sc.Query(scope.Where{"id": orderID}).
		Preload("Items").
		Preload("Items.Product").
		Preload("Table").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order %d not found", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// List returns the tenant's orders, optionally filtered by status and
// table, newest first.
func (s *OrderService) List(tenantID, status string, tableID *uint) ([]models.Order, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	where := scope.Where{}
	if status != "" {
		where["status"] = status
	}
	if tableID != nil {
		where["table_id"] = *tableID
	}

	var orders []models.Order
	err = sc.Query(where).
		Preload("Items").
		Preload("Table").
		Order("opened_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// recalculate rebuilds the monetary fields from the current item set:
// subtotal = sum of item subtotals, tax = (subtotal - discount) * rate,
// total = subtotal - discount + tax, all rounded to 2 places. The rate
// comes from the tenant settings (default 10%). Totals are never
// patched outside this func.
func (s *OrderService) recalculate(tx *scope.Scoped, order *models.Order) error {
	var items []models.OrderItem
	if err := tx.Query(scope.Where{"order_id": order.ID}).Find(&items).Error; err != nil {
		return err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	subtotal = subtotal.Round(2)

	rate := decimal.NewFromFloat(0.10)
	var ten models.Tenant
	if err := tx.DB().First(&ten, "id = ?", tx.TenantID()).Error; err == nil {
		rate = ten.TaxRate()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	taxable := subtotal.Sub(order.Discount)
	tax := taxable.Mul(rate).Round(2)
	total := taxable.Add(tax).Round(2)

	return tx.Updates(&models.Order{}, scope.Where{"id": order.ID}, map[string]interface{}{
		"subtotal": subtotal,
		"tax":      tax,
		"total":    total,
	})
}

func (s *OrderService) publishAndGet(tenantID string, orderID uint, event string) (*models.Order, error) {
	order, err := s.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(tenantID, event, order)
	return order, nil
}

func currentOrder(tx *scope.Scoped, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, scope.Where{"id": orderID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order %d not found", orderID)
		}
		return nil, err
	}
	return &order, nil
}
