package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/utils"
)

// TenantController manages the tenant records themselves and is the one
// controller that works on the unscoped handle: tenants are the root of
// isolation, not members of it.
type TenantController struct {
	DB *gorm.DB
}

func NewTenantController(db *gorm.DB) *TenantController {
	return &TenantController{DB: db}
}

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

type provisionInput struct {
	Name          string   `json:"name" binding:"required"`
	Subdomain     string   `json:"subdomain" binding:"required"`
	PlanType      string   `json:"plan_type"`
	AdminEmail    string   `json:"admin_email" binding:"required,email"`
	AdminPassword string   `json:"admin_password" binding:"required,min=8"`
	AdminFullName string   `json:"admin_full_name" binding:"required"`
	ServiceTax    *float64 `json:"service_tax"`
	Currency      string   `json:"currency"`
}

type updateTenantInput struct {
	Name       string   `json:"name"`
	PlanType   string   `json:"plan_type"`
	IsActive   *bool    `json:"is_active"`
	ServiceTax *float64 `json:"service_tax"`
	Currency   string   `json:"currency"`
	Timezone   string   `json:"timezone"`
}

// ProvisionTenant creates a tenant together with its first admin user
// in one transaction, so a tenant can never exist without a way in.
func (tc *TenantController) ProvisionTenant(c *gin.Context) {
	var in provisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sub := strings.ToLower(strings.TrimSpace(in.Subdomain))
	if !subdomainPattern.MatchString(sub) {
		utils.RespondDomainError(c, apperr.Validationf("invalid subdomain %q", in.Subdomain))
		return
	}

	var existing int64
	if err := tc.DB.Model(&models.Tenant{}).Where("subdomain = ?", sub).Count(&existing).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing > 0 {
		utils.RespondDomainError(c, apperr.Conflictf("subdomain %s is already taken", sub))
		return
	}

	settings := models.DefaultTenantSettings()
	if in.ServiceTax != nil {
		settings.ServiceTax = in.ServiceTax
	}
	if in.Currency != "" {
		settings.Currency = in.Currency
	}

	planType := in.PlanType
	if planType == "" {
		planType = "basic"
	}

	tenant := models.Tenant{
		Name:      in.Name,
		Subdomain: sub,
		PlanType:  planType,
		Settings:  settings,
		IsActive:  true,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var admin models.User
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		admin = models.User{
			TenantID:     tenant.ID,
			Email:        in.AdminEmail,
			PasswordHash: string(hash),
			FullName:     in.AdminFullName,
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Tenant provisioned", gin.H{
		"tenant": tenant,
		"admin":  admin,
	})
}

func (tc *TenantController) GetAllTenants(c *gin.Context) {
	q := tc.DB.Model(&models.Tenant{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("is_active = ?", true)
	}

	var tenants []models.Tenant
	if err := q.Order("name asc").Find(&tenants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tenants", tenants)
}

func (tc *TenantController) GetCurrentTenant(c *gin.Context) {
	var tenant models.Tenant
	if err := tc.DB.First(&tenant, "id = ?", tenantID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondDomainError(c, apperr.NotFoundf("tenant not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tenant detail", tenant)
}

// UpdateCurrentTenant edits the caller's own tenant. Settings fields
// are merged so an omitted field keeps its stored value.
func (tc *TenantController) UpdateCurrentTenant(c *gin.Context) {
	var in updateTenantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var tenant models.Tenant
	if err := tc.DB.First(&tenant, "id = ?", tenantID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondDomainError(c, apperr.NotFoundf("tenant not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if in.Name != "" {
		tenant.Name = in.Name
	}
	if in.PlanType != "" {
		tenant.PlanType = in.PlanType
	}
	if in.IsActive != nil {
		tenant.IsActive = *in.IsActive
	}
	if in.ServiceTax != nil {
		tenant.Settings.ServiceTax = in.ServiceTax
	}
	if in.Currency != "" {
		tenant.Settings.Currency = in.Currency
	}
	if in.Timezone != "" {
		tenant.Settings.Timezone = in.Timezone
	}

	if err := tc.DB.Save(&tenant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tenant updated", tenant)
}

// DeactivateTenant soft-disables a tenant instead of deleting rows:
// orders and payments under it stay intact for audit.
func (tc *TenantController) DeactivateTenant(c *gin.Context) {
	id := c.Param("id")

	var tenant models.Tenant
	if err := tc.DB.First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondDomainError(c, apperr.NotFoundf("tenant %s not found", id))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tc.DB.Model(&tenant).Update("is_active", false).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tenant deactivated", gin.H{"id": id})
}
