package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comandapos/comanda-app/services"
	"github.com/comandapos/comanda-app/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// CreatePayment -> record a payment against a closed order
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var in services.CreatePaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if in.CashierID == nil {
		in.CashierID = principalID(c)
	}

	payment, err := pc.Payments.Create(tenantID(c), in)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}

func (pc *PaymentController) GetPayments(c *gin.Context) {
	var orderID *uint
	if raw := c.Query("order_id"); raw != "" {
		id, err := parseUintQuery(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		orderID = &id
	}

	payments, err := pc.Payments.List(tenantID(c), orderID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

func (pc *PaymentController) GetPaymentByID(c *gin.Context) {
	id, err := uintParam(c, "payment_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.Payments.Get(tenantID(c), id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// GetOrderPaymentSummary -> how much of the order total is covered
func (pc *PaymentController) GetOrderPaymentSummary(c *gin.Context) {
	orderID, err := uintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	summary, err := pc.Payments.Summary(tenantID(c), orderID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment summary", summary)
}
