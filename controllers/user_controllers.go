package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/scope"
	"github.com/comandapos/comanda-app/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type registerInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a staff account inside the caller's tenant. Reserved
// for admins, enforced at the route level.
func (uc *UserController) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidRole(in.Role) {
		utils.RespondDomainError(c, apperr.Validationf("unknown role %q", in.Role))
		return
	}

	sc, err := scope.For(uc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	n, err := sc.Count(&models.User{}, scope.Where{"email": in.Email})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if n > 0 {
		utils.RespondDomainError(c, apperr.Conflictf("email %s is already registered", in.Email))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := sc.Create(&user); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}

// Login authenticates within the tenant resolved from the request and
// issues a token that carries the tenant claim.
func (uc *UserController) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sc, err := scope.For(uc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	var user models.User
	if err := sc.First(&user, scope.Where{"email": in.Email}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !user.IsActive {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("account is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.TenantID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func (uc *UserController) GetProfile(c *gin.Context) {
	id := principalID(c)
	if id == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("not authenticated"))
		return
	}

	sc, err := scope.For(uc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	var user models.User
	if err := sc.First(&user, scope.Where{"id": *id}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondDomainError(c, apperr.NotFoundf("user %d not found", *id))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", user)
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	sc, err := scope.For(uc.DB, tenantID(c))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	var users []models.User
	if err := sc.Query(scope.Where{}).Order("full_name asc").Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}
