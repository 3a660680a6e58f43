package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TenantSettings is stored as a JSON column on the tenant row.
// ServiceTax is a percentage (10 = 10%).
type TenantSettings struct {
	ServiceTax *float64 `json:"service_tax,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Timezone   string   `json:"timezone,omitempty"`
}

func (s TenantSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *TenantSettings) Scan(value interface{}) error {
	if value == nil {
		*s = TenantSettings{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported settings column type %T", value)
	}
}

func DefaultTenantSettings() TenantSettings {
	tax := 10.0
	return TenantSettings{
		ServiceTax: &tax,
		Currency:   "BRL",
	}
}

// Tenant is the root of isolation. It is the only entity that does not
// carry a tenant_id column itself.
type Tenant struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Subdomain string         `gorm:"type:varchar(63);uniqueIndex;not null" json:"subdomain"`
	PlanType  string         `gorm:"type:varchar(20);not null;default:'basic'" json:"plan_type"`
	Settings  TenantSettings `gorm:"type:json" json:"settings"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TaxRate returns the configured service tax as a fraction (0.10 for
// 10%). Tenants without an explicit setting fall back to 10%.
func (t *Tenant) TaxRate() decimal.Decimal {
	if t.Settings.ServiceTax == nil {
		return decimal.NewFromFloat(0.10)
	}
	return decimal.NewFromFloat(*t.Settings.ServiceTax).Div(decimal.NewFromInt(100))
}
