package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const PaymentStatusCompleted = "completed"

const (
	PaymentMethodCash       = "cash"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
	PaymentMethodPix        = "pix"
)

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPix:
		return true
	}
	return false
}

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TenantID      string          `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Order         *Order          `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	TransactionID string          `gorm:"type:varchar(64)" json:"transaction_id"`
	CashierID     *uint           `gorm:"index" json:"cashier_id,omitempty"`
	Cashier       *User           `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (p *Payment) OwnerTenantID() string { return p.TenantID }
func (p *Payment) SetTenantID(id string) { p.TenantID = id }
