package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/scope"
)

// CatalogService manages the tenant's categories and products.
// Deleting an entity that something still references is rejected, not
// cascaded.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type CreateCategoryInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type UpdateCategoryInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

type CreateProductInput struct {
	CategoryID  *uint           `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable *bool           `json:"is_available"`
	IsActive    *bool           `json:"is_active"`
}

type UpdateProductInput struct {
	CategoryID  *uint            `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
	IsActive    *bool            `json:"is_active"`
}

type ProductFilter struct {
	CategoryID    *uint
	OnlyAvailable bool
	Search        string
}

func (s *CatalogService) CreateCategory(tenantID string, in CreateCategoryInput) (*models.Category, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if in.Name == "" {
		return nil, apperr.Validationf("category name is required")
	}

	dup, err := sc.Count(&models.Category{}, scope.Where{"name": in.Name})
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, apperr.Conflictf("category '%s' already exists", in.Name)
	}

	category := models.Category{
		Name:         in.Name,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
		IsActive:     true,
	}
	if err := sc.Create(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) GetCategory(tenantID string, categoryID uint) (*models.Category, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var category models.Category
	if err := sc.First(&category, scope.Where{"id": categoryID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("category %d not found", categoryID)
		}
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) ListCategories(tenantID string) ([]models.Category, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := sc.Query(scope.Where{}).Order("display_order asc, name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CatalogService) UpdateCategory(tenantID string, categoryID uint, in UpdateCategoryInput) (*models.Category, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetCategory(tenantID, categoryID); err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	if in.Name != nil {
		var dup int64
		err := sc.Model(&models.Category{}, scope.Where{"name": *in.Name}).
			Where("id <> ?", categoryID).
			Count(&dup).Error
		if err != nil {
			return nil, err
		}
		if dup > 0 {
			return nil, apperr.Conflictf("category '%s' already exists", *in.Name)
		}
		values["name"] = *in.Name
	}
	if in.Description != nil {
		values["description"] = *in.Description
	}
	if in.DisplayOrder != nil {
		values["display_order"] = *in.DisplayOrder
	}
	if in.IsActive != nil {
		values["is_active"] = *in.IsActive
	}

	if len(values) > 0 {
		if err := sc.Updates(&models.Category{}, scope.Where{"id": categoryID}, values); err != nil {
			return nil, err
		}
	}
	return s.GetCategory(tenantID, categoryID)
}

func (s *CatalogService) DeleteCategory(tenantID string, categoryID uint) error {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return err
	}

	if _, err := s.GetCategory(tenantID, categoryID); err != nil {
		return err
	}

	n, err := sc.Count(&models.Product{}, scope.Where{"category_id": categoryID})
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflictf("cannot delete a category with %d associated product(s)", n)
	}

	return sc.Delete(&models.Category{}, scope.Where{"id": categoryID})
}

func (s *CatalogService) CreateProduct(tenantID string, in CreateProductInput) (*models.Product, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if in.Name == "" {
		return nil, apperr.Validationf("product name is required")
	}
	if !in.Price.IsPositive() {
		return nil, apperr.Validationf("product price must be positive")
	}

	if in.CategoryID != nil {
		category, err := s.GetCategory(tenantID, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !category.IsActive {
			return nil, apperr.Validationf("cannot add products to an inactive category")
		}
	}

	dup, err := sc.Count(&models.Product{}, scope.Where{"name": in.Name})
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, apperr.Conflictf("product '%s' already exists", in.Name)
	}

	product := models.Product{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := sc.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *CatalogService) GetProduct(tenantID string, productID uint) (*models.Product, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = sc.Query(scope.Where{"id": productID}).Preload("Category").First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("product %d not found", productID)
		}
		return nil, err
	}
	return &product, nil
}

func (s *CatalogService) ListProducts(tenantID string, filter ProductFilter) ([]models.Product, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	where := scope.Where{"is_active": true}
	if filter.CategoryID != nil {
		where["category_id"] = *filter.CategoryID
	}
	if filter.OnlyAvailable {
		where["is_available"] = true
	}

	q := sc.Query(where).Preload("Category")
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var products []models.Product
	if err := q.Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) UpdateProduct(tenantID string, productID uint, in UpdateProductInput) (*models.Product, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetProduct(tenantID, productID); err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	if in.CategoryID != nil {
		if _, err := s.GetCategory(tenantID, *in.CategoryID); err != nil {
			return nil, err
		}
		values["category_id"] = *in.CategoryID
	}
	if in.Name != nil {
		var dup int64
		err := sc.Model(&models.Product{}, scope.Where{"name": *in.Name}).
			Where("id <> ?", productID).
			Count(&dup).Error
		if err != nil {
			return nil, err
		}
		if dup > 0 {
			return nil, apperr.Conflictf("product '%s' already exists", *in.Name)
		}
		values["name"] = *in.Name
	}
	if in.Description != nil {
		values["description"] = *in.Description
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, apperr.Validationf("product price must be positive")
		}
		values["price"] = in.Price.Round(2)
	}
	if in.IsAvailable != nil {
		values["is_available"] = *in.IsAvailable
	}
	if in.IsActive != nil {
		values["is_active"] = *in.IsActive
	}

	if len(values) > 0 {
		if err := sc.Updates(&models.Product{}, scope.Where{"id": productID}, values); err != nil {
			return nil, err
		}
	}
	return s.GetProduct(tenantID, productID)
}

// DeleteProduct rejects products already referenced by order items;
// those should be deactivated instead.
func (s *CatalogService) DeleteProduct(tenantID string, productID uint) error {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return err
	}

	if _, err := s.GetProduct(tenantID, productID); err != nil {
		return err
	}

	n, err := sc.Count(&models.OrderItem{}, scope.Where{"product_id": productID})
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflictf("cannot delete a product with %d associated order item(s); deactivate it instead", n)
	}

	return sc.Delete(&models.Product{}, scope.Where{"id": productID})
}

func (s *CatalogService) ToggleProductAvailability(tenantID string, productID uint) (*models.Product, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	product, err := s.GetProduct(tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := sc.Updates(&models.Product{}, scope.Where{"id": productID},
		map[string]interface{}{"is_available": !product.IsAvailable}); err != nil {
		return nil, err
	}
	return s.GetProduct(tenantID, productID)
}
