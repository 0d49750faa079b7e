package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appordering "github.com/karobar/backend/internal/application/ordering"
	domainordering "github.com/karobar/backend/internal/domain/ordering"
)

// DraftHandler exposes the order console's draft wizard. Every route
// is scoped by order type, so a user can work on one purchase and one
// sale at the same time.
type DraftHandler struct {
	BaseHandler
	draftService *appordering.DraftService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(draftService *appordering.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// RegisterRoutes registers draft routes
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	drafts := rg.Group("/order-drafts/:type")
	{
		drafts.GET("", h.GetOrCreate)
		drafts.DELETE("", h.Discard)
		drafts.PUT("/entity", h.SetEntity)
		drafts.PUT("/items", h.SetItems)
		drafts.PUT("/discount", h.SetDiscount)
		drafts.POST("/charges", h.AddCharge)
		drafts.POST("/charges/vat", h.AddVatCharge)
		drafts.PATCH("/charges/:id", h.UpdateCharge)
		drafts.DELETE("/charges/:id", h.RemoveCharge)
		drafts.POST("/payments", h.AddPayment)
		drafts.DELETE("/payments/:id", h.RemovePayment)
		drafts.POST("/next", h.Next)
		drafts.POST("/back", h.Back)
	}
}

// orderType parses the :type path parameter. Responds 400 on failure.
func (h *DraftHandler) orderType(c *gin.Context) (domainordering.OrderType, bool) {
	orderType := domainordering.OrderType(strings.ToUpper(c.Param("type")))
	if !orderType.IsValid() {
		h.BadRequest(c, "Order type must be buy or sell")
		return "", false
	}
	return orderType, true
}

// identity pulls the caller's org and user from the request context
func (h *DraftHandler) identity(c *gin.Context) (orgID, userID uuid.UUID, ok bool) {
	orgID, ok = h.getOrgID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok = h.getUserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, userID, true
}

// GetOrCreate returns the caller's draft, starting one if needed
func (h *DraftHandler) GetOrCreate(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	orgID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	draft, err := h.draftService.GetOrCreate(c.Request.Context(), orgID, userID, orderType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// Discard drops the caller's draft
func (h *DraftHandler) Discard(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.draftService.Discard(c.Request.Context(), userID, orderType); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetEntityRequest assigns the draft's counterparty. A null entity_id
// clears the assignment, which on a sale means a walk-in customer.
type SetEntityRequest struct {
	EntityID *uuid.UUID `json:"entity_id"`
}

// SetEntity assigns or clears the draft's counterparty
func (h *DraftHandler) SetEntity(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req SetEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entityID := uuid.Nil
	if req.EntityID != nil {
		entityID = *req.EntityID
	}

	draft, err := h.draftService.SetEntity(c.Request.Context(), userID, orderType, entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// SetItemsRequest replaces the draft's line items
type SetItemsRequest struct {
	Items []appordering.ItemInput `json:"items" binding:"required,dive"`
}

// SetItems replaces the draft's line items
func (h *DraftHandler) SetItems(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req SetItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := h.draftService.SetItems(c.Request.Context(), userID, orderType, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// SetDiscountRequest applies an order-level discount
type SetDiscountRequest struct {
	Discount string `json:"discount"`
}

// SetDiscount applies an order-level discount
func (h *DraftHandler) SetDiscount(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req SetDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := h.draftService.SetDiscount(c.Request.Context(), userID, orderType, req.Discount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// AddCharge appends a blank charge row
func (h *DraftHandler) AddCharge(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	draft, err := h.draftService.AddCharge(c.Request.Context(), userID, orderType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// AddVatCharge inserts a VAT charge, subject to the org's VAT setting
func (h *DraftHandler) AddVatCharge(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	draft, err := h.draftService.AddVatCharge(c.Request.Context(), userID, orderType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// UpdateCharge applies a partial edit to one charge row
func (h *DraftHandler) UpdateCharge(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}
	chargeID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req appordering.ChargeUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := h.draftService.UpdateCharge(c.Request.Context(), userID, orderType, chargeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// RemoveCharge deletes a charge row
func (h *DraftHandler) RemoveCharge(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}
	chargeID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	draft, err := h.draftService.RemoveCharge(c.Request.Context(), userID, orderType, chargeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// AddPayment records a payment row against one of the org's accounts
func (h *DraftHandler) AddPayment(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req appordering.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := h.draftService.AddPayment(c.Request.Context(), userID, orderType, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// RemovePayment deletes a payment row
func (h *DraftHandler) RemovePayment(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	draft, err := h.draftService.RemovePayment(c.Request.Context(), userID, orderType, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// Next advances the draft to the next wizard step
func (h *DraftHandler) Next(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Next(c.Request.Context(), userID, orderType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}

// Back moves the draft to the previous wizard step
func (h *DraftHandler) Back(c *gin.Context) {
	orderType, ok := h.orderType(c)
	if !ok {
		return
	}
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Back(c.Request.Context(), userID, orderType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}
