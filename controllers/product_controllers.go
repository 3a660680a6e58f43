package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comandapos/comanda-app/services"
	"github.com/comandapos/comanda-app/utils"
)

type ProductController struct {
	Catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var in services.CreateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product, err := pc.Catalog.CreateProduct(tenantID(c), in)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

func (pc *ProductController) GetAllProducts(c *gin.Context) {
	filter := services.ProductFilter{
		OnlyAvailable: c.Query("only_available") == "true",
		Search:        c.Query("search"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := parseUintQuery(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		filter.CategoryID = &id
	}

	products, err := pc.Catalog.ListProducts(tenantID(c), filter)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, err := uintParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product, err := pc.Catalog.GetProduct(tenantID(c), id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := uintParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var in services.UpdateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product, err := pc.Catalog.UpdateProduct(tenantID(c), id, in)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := uintParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := pc.Catalog.DeleteProduct(tenantID(c), id); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deleted", gin.H{"product_id": id})
}

func (pc *ProductController) ToggleAvailability(c *gin.Context) {
	id, err := uintParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product, err := pc.Catalog.ToggleProductAvailability(tenantID(c), id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product availability toggled", product)
}
