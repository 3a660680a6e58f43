package services_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/services"
)

// closedOrderWithTotal opens an order for a 100.00 product under a
// zero-tax tenant and closes it, leaving a clean round total to pay.
func closedOrderWithTotal(t *testing.T, db *gorm.DB, orders *services.OrderService, tenantID string) *models.Order {
	t.Helper()
	product := seedProduct(t, db, tenantID, "Tasting Menu", "100.00")

	order, err := orders.Create(tenantID, services.CreateOrderInput{OrderNumber: "PAY-" + t.Name()})
	require.NoError(t, err)
	_, err = orders.AddItem(tenantID, order.ID, services.AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	order, err = orders.Close(tenantID, order.ID)
	require.NoError(t, err)
	assertDecimal(t, "100.00", order.Total)
	return order
}

func TestPaymentNeverExceedsRemainingBalance(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 0)
	hub := &recordingPublisher{}
	orders := services.NewOrderService(db, hub)
	payments := services.NewPaymentService(db, hub)
	order := closedOrderWithTotal(t, db, orders, "demo")

	_, err := payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodCash,
		Amount:        decimal.RequireFromString("60.00"),
	})
	require.NoError(t, err)

	_, err = payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodPix,
		Amount:        decimal.RequireFromString("45.00"),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "40.00")

	_, err = payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodPix,
		Amount:        decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)

	summary, err := payments.Summary("demo", order.ID)
	require.NoError(t, err)
	assertDecimal(t, "100.00", summary.TotalPaid)
	assertDecimal(t, "0.00", summary.Remaining)
	assert.True(t, summary.IsPaidInFull)
	assert.Equal(t, 2, summary.Payments)

	// Fully paid: even a cent more is rejected.
	_, err = payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodCash,
		Amount:        decimal.RequireFromString("0.01"),
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	assert.Equal(t, 2, hub.count("demo", "payment_update"))
}

func TestPaymentRequiresClosedOrder(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 0)
	hub := &recordingPublisher{}
	orders := services.NewOrderService(db, hub)
	payments := services.NewPaymentService(db, hub)

	order, err := orders.Create("demo", services.CreateOrderInput{OrderNumber: "PAY-OPEN"})
	require.NoError(t, err)

	_, err = payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodCash,
		Amount:        decimal.RequireFromString("10.00"),
	})
	assert.True(t, apperr.IsKind(err, apperr.KindIllegalState))
}

func TestPaymentValidation(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 0)
	hub := &recordingPublisher{}
	orders := services.NewOrderService(db, hub)
	payments := services.NewPaymentService(db, hub)
	order := closedOrderWithTotal(t, db, orders, "demo")

	_, err := payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: "barter",
		Amount:        decimal.RequireFromString("10.00"),
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodCash,
		Amount:        decimal.Zero,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = payments.Create("demo", services.CreatePaymentInput{
		OrderID:       9999,
		PaymentMethod: models.PaymentMethodCash,
		Amount:        decimal.RequireFromString("10.00"),
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPaymentTransactionReference(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 0)
	hub := &recordingPublisher{}
	orders := services.NewOrderService(db, hub)
	payments := services.NewPaymentService(db, hub)
	order := closedOrderWithTotal(t, db, orders, "demo")

	payment, err := payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodCreditCard,
		Amount:        decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payment.TransactionID, "CREDIT_CARD-"))
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestPaymentsAreIsolatedAcrossTenants(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 0)
	seedTenant(t, db, "other", 0)
	hub := &recordingPublisher{}
	orders := services.NewOrderService(db, hub)
	payments := services.NewPaymentService(db, hub)
	order := closedOrderWithTotal(t, db, orders, "demo")

	payment, err := payments.Create("demo", services.CreatePaymentInput{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodCash,
		Amount:        decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = payments.Get("other", payment.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	list, err := payments.List("other", nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
