package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusOpen      = "open"
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeout  = "takeout"
	OrderTypeDelivery = "delivery"
)

// Order is the aggregate root of the order lifecycle. Monetary fields
// are recomputed from the items after every mutation, never patched in
// isolation.
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TenantID     string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_orders_tenant_number,priority:1;index" json:"tenant_id"`
	OrderNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_tenant_number,priority:2" json:"order_number"`
	TableID      *uint           `gorm:"index" json:"table_id,omitempty"`
	Table        *Table          `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	WaiterID     *uint           `gorm:"index" json:"waiter_id,omitempty"`
	Waiter       *User           `gorm:"foreignKey:WaiterID" json:"waiter,omitempty"`
	CustomerID   *uint           `gorm:"index" json:"customer_id,omitempty"`
	Customer     *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName string          `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	Status       string          `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	OrderType    string          `gorm:"type:varchar(20);not null;default:'dine_in'" json:"order_type"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Discount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount"`
	Tax          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	Notes        string          `gorm:"type:text" json:"notes,omitempty"`
	OpenedAt     time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (o *Order) OwnerTenantID() string { return o.TenantID }
func (o *Order) SetTenantID(id string) { o.TenantID = id }

// Terminal reports whether the order reached a state no transition
// leaves.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusClosed || o.Status == OrderStatusCancelled
}
