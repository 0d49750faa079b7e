package handler

import (
	"github.com/gin-gonic/gin"

	appordering "github.com/karobar/backend/internal/application/ordering"
	apppartner "github.com/karobar/backend/internal/application/partner"
	"github.com/karobar/backend/internal/interfaces/http/dto"
)

// EntityHandler exposes the org's counterparties
type EntityHandler struct {
	BaseHandler
	entityService *apppartner.EntityService
	orderService  *appordering.OrderService
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(entityService *apppartner.EntityService, orderService *appordering.OrderService) *EntityHandler {
	return &EntityHandler{
		entityService: entityService,
		orderService:  orderService,
	}
}

// RegisterRoutes registers entity routes
func (h *EntityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entities := rg.Group("/entities")
	{
		entities.POST("", h.Create)
		entities.GET("", h.List)
		entities.POST("/default", h.EnsureDefault)
		entities.GET("/:id", h.Get)
		entities.GET("/:id/orders", h.ListOrders)
	}
}

// Create registers a new counterparty
func (h *EntityHandler) Create(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req apppartner.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entity, err := h.entityService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entity)
}

// Get returns one counterparty
func (h *EntityHandler) Get(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	entityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	entity, err := h.entityService.Get(c.Request.Context(), orgID, entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entity)
}

// List returns the org's counterparties
func (h *EntityHandler) List(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entities, err := h.entityService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entities)
}

// EnsureDefault returns the org's walk-in entity, creating it on first use
func (h *EntityHandler) EnsureDefault(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	entity, err := h.entityService.EnsureDefault(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entity)
}

// ListOrders returns one counterparty's orders
func (h *EntityHandler) ListOrders(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	entityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	orders, err := h.orderService.ListByEntity(c.Request.Context(), orgID, entityID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
