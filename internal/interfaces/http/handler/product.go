package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/karobar/backend/internal/application/catalog"
	"github.com/karobar/backend/internal/interfaces/http/dto"
)

// ProductHandler exposes the org's product catalog
type ProductHandler struct {
	BaseHandler
	productService *appcatalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *appcatalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
	}
}

// Create registers a new product with its variants
func (h *ProductHandler) Create(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get returns one product with its variants
func (h *ProductHandler) Get(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	productID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), orgID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns the org's products
func (h *ProductHandler) List(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	products, err := h.productService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
