package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/scope"
	"github.com/comandapos/comanda-app/utils"
)

// CustomerController talks to the scoped handle directly: customers are
// plain records with no workflow behind them.
type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

type customerInput struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var in customerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sc, err := scope.For(cc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	customer := models.Customer{
		Name:  in.Name,
		Phone: in.Phone,
		Email: in.Email,
		Notes: in.Notes,
	}
	if err := sc.Create(&customer); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	sc, err := scope.For(cc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	q := sc.Query(scope.Where{})
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var customers []models.Customer
	if err := q.Order("name asc").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, err := uintParam(c, "customer_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sc, err := scope.For(cc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	var customer models.Customer
	if err := sc.First(&customer, scope.Where{"id": id}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondDomainError(c, apperr.NotFoundf("customer %d not found", id))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, err := uintParam(c, "customer_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var in customerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sc, err := scope.For(cc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	var customer models.Customer
	if err := sc.First(&customer, scope.Where{"id": id}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondDomainError(c, apperr.NotFoundf("customer %d not found", id))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = sc.Updates(&models.Customer{}, scope.Where{"id": id}, map[string]interface{}{
		"name":  in.Name,
		"phone": in.Phone,
		"email": in.Email,
		"notes": in.Notes,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := sc.First(&customer, scope.Where{"id": id}); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, err := uintParam(c, "customer_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sc, err := scope.For(cc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	n, err := sc.Count(&models.Customer{}, scope.Where{"id": id})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if n == 0 {
		utils.RespondDomainError(c, apperr.NotFoundf("customer %d not found", id))
		return
	}

	if err := sc.Delete(&models.Customer{}, scope.Where{"id": id}); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"id": id})
}
