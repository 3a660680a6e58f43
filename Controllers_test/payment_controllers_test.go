package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/controllers"
	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/services"
)

func setupPaymentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(asTenant("demo-tenant"))

	hub := events.NewHub()
	orderCtrl := controllers.NewOrderController(services.NewOrderService(db, hub))
	paymentCtrl := controllers.NewPaymentController(services.NewPaymentService(db, hub))
	router.POST("/orders", orderCtrl.CreateOrder)
	router.POST("/orders/:order_id/items", orderCtrl.AddItem)
	router.POST("/orders/:order_id/close", orderCtrl.CloseOrder)
	router.GET("/orders/:order_id/payment-summary", paymentCtrl.GetOrderPaymentSummary)
	router.POST("/payments", paymentCtrl.CreatePayment)
	router.GET("/payments", paymentCtrl.GetPayments)
	return router
}

// closedOrderID drives a zero-discount order to closed with a known
// total of 110.00 (100.00 plus 10% tax).
func closedOrderID(t *testing.T, db *gorm.DB, router *gin.Engine) int {
	t.Helper()
	product := models.Product{
		TenantID:    "demo-tenant",
		Name:        "Tasting Menu",
		Price:       decimal.RequireFromString("100.00"),
		IsAvailable: true,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&product).Error)

	w := doJSON(t, router, "POST", "/orders", map[string]interface{}{"order_number": "PAY-001"})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeResponse(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, router, "POST", fmt.Sprintf("/orders/%d/items", orderID), map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", fmt.Sprintf("/orders/%d/close", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	return orderID
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	router := setupPaymentRouter(db)
	orderID := closedOrderID(t, db, router)

	w := doJSON(t, router, "POST", "/payments", map[string]interface{}{
		"order_id":       orderID,
		"payment_method": "cash",
		"amount":         60.00,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Payment recorded", decodeResponse(t, w)["message"])

	// 60 of 110 paid; 55 would overshoot the remaining 50.
	w = doJSON(t, router, "POST", "/payments", map[string]interface{}{
		"order_id":       orderID,
		"payment_method": "pix",
		"amount":         55.00,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "POST", "/payments", map[string]interface{}{
		"order_id":       orderID,
		"payment_method": "pix",
		"amount":         50.00,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "GET", fmt.Sprintf("/orders/%d/payment-summary", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 110.0, summary["total"])
	assert.Equal(t, 110.0, summary["total_paid"])
	assert.Equal(t, 0.0, summary["remaining"])
	assert.Equal(t, true, summary["is_paid_in_full"])

	w = doJSON(t, router, "GET", fmt.Sprintf("/payments?order_id=%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	payments := decodeResponse(t, w)["data"].([]interface{})
	assert.Len(t, payments, 2)
}

func TestPaymentOnOpenOrderIs422(t *testing.T) {
	db := setupTestDB(t)
	router := setupPaymentRouter(db)

	w := doJSON(t, router, "POST", "/orders", map[string]interface{}{"order_number": "PAY-002"})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeResponse(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, router, "POST", "/payments", map[string]interface{}{
		"order_id":       orderID,
		"payment_method": "cash",
		"amount":         10.00,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPaymentWithUnknownMethodIs400(t *testing.T) {
	db := setupTestDB(t)
	router := setupPaymentRouter(db)
	orderID := closedOrderID(t, db, router)

	w := doJSON(t, router, "POST", "/payments", map[string]interface{}{
		"order_id":       orderID,
		"payment_method": "barter",
		"amount":         10.00,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
