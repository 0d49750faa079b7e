package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appordering "github.com/karobar/backend/internal/application/ordering"
	domainordering "github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/interfaces/http/dto"
)

// OrderHandler exposes submitted orders and the pricing preview
type OrderHandler struct {
	BaseHandler
	orderService *appordering.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *appordering.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Submit)
		orders.POST("/preview", h.Preview)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
	}
}

// SubmitOrderRequest finalizes the caller's draft of the given type
type SubmitOrderRequest struct {
	Type string `json:"type" binding:"required"`
	// VendorSettlementAccountID funds charges the business bears itself
	VendorSettlementAccountID *uuid.UUID `json:"vendor_settlement_account_id"`
}

// Submit persists the caller's draft as an order. The X-Idempotency-Key
// header, when present, guards against double submission.
func (h *OrderHandler) Submit(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	orderType := domainordering.OrderType(strings.ToUpper(req.Type))
	if !orderType.IsValid() {
		h.BadRequest(c, "Order type must be buy or sell")
		return
	}

	order, err := h.orderService.Submit(c.Request.Context(), appordering.SubmitRequest{
		OrgID:                     orgID,
		UserID:                    userID,
		OrderType:                 orderType,
		VendorSettlementAccountID: req.VendorSettlementAccountID,
		IdempotencyKey:            c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Preview prices a hypothetical order without touching any draft
func (h *OrderHandler) Preview(c *gin.Context) {
	var req appordering.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	breakdown, err := h.orderService.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}

// Get returns one order with its items
func (h *OrderHandler) Get(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List returns the org's orders, newest first by default. Supports
// type and settled query filters alongside the common list parameters.
func (h *OrderHandler) List(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := req.ToFilter()
	if orderType := c.Query("type"); orderType != "" {
		normalized := domainordering.OrderType(strings.ToUpper(orderType))
		if !normalized.IsValid() {
			h.BadRequest(c, "Order type must be buy or sell")
			return
		}
		filter.Filters["type"] = normalized.String()
	}
	if settled := c.Query("settled"); settled != "" {
		filter.Filters["settled"] = settled == "true"
	}

	orders, err := h.orderService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
