package models

import "time"

const (
	TableStatusAvailable   = "available"
	TableStatusOccupied    = "occupied"
	TableStatusReserved    = "reserved"
	TableStatusMaintenance = "maintenance"
)

func ValidTableStatus(status string) bool {
	switch status {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusMaintenance:
		return true
	}
	return false
}

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_tables_tenant_number,priority:1;index" json:"tenant_id"`
	TableNumber string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_tables_tenant_number,priority:2" json:"table_number"`
	Capacity    int       `gorm:"not null;default:4" json:"capacity"`
	Status      string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	QRCode      string    `gorm:"type:varchar(255)" json:"qr_code,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (t *Table) OwnerTenantID() string { return t.TenantID }
func (t *Table) SetTenantID(id string) { t.TenantID = id }
