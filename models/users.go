package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleWaiter  = "waiter"
	RoleCashier = "cashier"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleWaiter, RoleCashier:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_users_tenant_email,priority:1;index" json:"tenant_id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_tenant_email,priority:2" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Role         string    `gorm:"type:varchar(20);not null" json:"role"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (u *User) OwnerTenantID() string { return u.TenantID }
func (u *User) SetTenantID(id string) { u.TenantID = id }
