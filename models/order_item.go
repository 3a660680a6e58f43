package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderItemStatusPending = "pending"

// OrderItem snapshots the product price at add-time as UnitPrice;
// later catalog price changes never touch existing items.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TenantID  string          `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Order     *Order          `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Status    string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

func (i *OrderItem) OwnerTenantID() string { return i.TenantID }
func (i *OrderItem) SetTenantID(id string) { i.TenantID = id }
