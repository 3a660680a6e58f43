package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    string          `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Category    *Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	// No column default on the flags: gorm omits zero-value bools that
	// carry one, which would turn an explicit false into true on insert.
	// Callers set both on create.
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (p *Product) OwnerTenantID() string { return p.TenantID }
func (p *Product) SetTenantID(id string) { p.TenantID = id }
