package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/scope"
	"github.com/comandapos/comanda-app/utils"
)

// PaymentService records payments against closed orders and prevents
// overpayment. "Amount paid" is always re-summed from the completed
// payments, never cached.
type PaymentService struct {
	db    *gorm.DB
	hub   events.Publisher
	locks *idLocks
}

func NewPaymentService(db *gorm.DB, hub events.Publisher) *PaymentService {
	return &PaymentService{db: db, hub: hub, locks: newIDLocks()}
}

type CreatePaymentInput struct {
	OrderID       uint            `json:"order_id"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	CashierID     *uint           `json:"cashier_id"`
}

// PaymentSummary is recomputed on demand so there is no second source
// of truth for the amount paid.
type PaymentSummary struct {
	OrderID      uint            `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	Total        decimal.Decimal `json:"total"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Remaining    decimal.Decimal `json:"remaining"`
	IsPaidInFull bool            `json:"is_paid_in_full"`
	Payments     int             `json:"payments"`
}

func (s *PaymentService) Create(tenantID string, in CreatePaymentInput) (*models.Payment, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperr.Validationf("unknown payment method '%s'", in.PaymentMethod)
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validationf("payment amount must be positive")
	}

	unlock := s.locks.lock(in.OrderID)
	defer unlock()

	var payment models.Payment
	err = sc.Transaction(func(tx *scope.Scoped) error {
		var order models.Order
		if err := tx.First(&order, scope.Where{"id": in.OrderID}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order %d not found", in.OrderID)
			}
			return err
		}
		if order.Status != models.OrderStatusClosed {
			return apperr.IllegalStatef("only closed orders can receive payments")
		}

		paid, err := sumCompletedPayments(tx, in.OrderID)
		if err != nil {
			return err
		}

		remaining := order.Total.Sub(paid)
		if in.Amount.GreaterThan(remaining) {
			return apperr.Conflictf("amount exceeds the remaining balance of %s", remaining.StringFixed(2))
		}

		payment = models.Payment{
			OrderID:       in.OrderID,
			PaymentMethod: in.PaymentMethod,
			Amount:        in.Amount.Round(2),
			Status:        models.PaymentStatusCompleted,
			TransactionID: transactionRef(in.PaymentMethod),
			CashierID:     in.CashierID,
		}
		return tx.Create(&payment)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("payment %s recorded for order %d (tenant=%s)", payment.TransactionID, in.OrderID, tenantID)
	s.hub.Publish(tenantID, events.EventPaymentUpdate, payment)
	return &payment, nil
}

func (s *PaymentService) Get(tenantID string, paymentID uint) (*models.Payment, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := sc.First(&payment, scope.Where{"id": paymentID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("payment %d not found", paymentID)
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) List(tenantID string, orderID *uint) ([]models.Payment, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	where := scope.Where{}
	if orderID != nil {
		where["order_id"] = *orderID
	}

	var payments []models.Payment
	if err := sc.Query(where).Order("created_at desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Summary reports how much of the order total is covered by completed
// payments.
func (s *PaymentService) Summary(tenantID string, orderID uint) (*PaymentSummary, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := sc.First(&order, scope.Where{"id": orderID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order %d not found", orderID)
		}
		return nil, err
	}

	var payments []models.Payment
	if err := sc.Query(scope.Where{"order_id": orderID, "status": models.PaymentStatusCompleted}).
		Find(&payments).Error; err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	remaining := order.Total.Sub(paid)
	return &PaymentSummary{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Total:        order.Total,
		TotalPaid:    paid,
		Remaining:    remaining,
		IsPaidInFull: remaining.LessThanOrEqual(decimal.Zero),
		Payments:     len(payments),
	}, nil
}

func sumCompletedPayments(tx *scope.Scoped, orderID uint) (decimal.Decimal, error) {
	var payments []models.Payment
	err := tx.Query(scope.Where{"order_id": orderID, "status": models.PaymentStatusCompleted}).
		Find(&payments).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

// transactionRef builds a display/audit reference: method, timestamp
// and a short random suffix. Practically unique, not cryptographic.
func transactionRef(method string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(method), time.Now().UnixMilli(), suffix)
}
