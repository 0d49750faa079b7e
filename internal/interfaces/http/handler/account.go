package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptreasury "github.com/karobar/backend/internal/application/treasury"
	domainordering "github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/interfaces/http/dto"
)

// AccountHandler exposes the org's money-holding accounts and the
// payment sweep that settles outstanding orders
type AccountHandler struct {
	BaseHandler
	accountService *apptreasury.AccountService
	sweepService   *apptreasury.SweepService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *apptreasury.AccountService, sweepService *apptreasury.SweepService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		sweepService:   sweepService,
	}
}

// RegisterRoutes registers account and payment routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.Get)
		accounts.GET("/:id/transactions", h.ListTransactions)
		accounts.POST("/:id/transactions", h.RecordTransaction)
	}
	rg.POST("/entities/:id/payments", h.Sweep)
}

// Create opens a new account
func (h *AccountHandler) Create(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req apptreasury.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Get returns one account
func (h *AccountHandler) Get(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), orgID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List returns the org's accounts
func (h *AccountHandler) List(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	accounts, err := h.accountService.List(c.Request.Context(), orgID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// ListTransactions returns an account's ledger entries
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	transactions, err := h.accountService.ListTransactions(c.Request.Context(), orgID, accountID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transactions)
}

// RecordTransaction applies a manual debit or credit to an account
func (h *AccountHandler) RecordTransaction(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req apptreasury.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	transaction, err := h.accountService.RecordTransaction(c.Request.Context(), orgID, accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transaction)
}

// SweepPaymentRequest settles a counterparty's outstanding orders
// with one lump payment
type SweepPaymentRequest struct {
	Type      string    `json:"type" binding:"required"`
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Amount    string    `json:"amount" binding:"required,decimal"`
	// Cheque metadata, required when the account is a cheque account
	ChequeIssuer string `json:"cheque_issuer"`
	ChequeBank   string `json:"cheque_bank"`
	ChequeNumber string `json:"cheque_number"`
}

// Sweep spreads a lump payment across the entity's outstanding orders,
// oldest first. The X-Idempotency-Key header, when present, guards
// against double submission.
func (h *AccountHandler) Sweep(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}
	entityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SweepPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	orderType := domainordering.OrderType(strings.ToUpper(req.Type))
	if !orderType.IsValid() {
		h.BadRequest(c, "Order type must be buy or sell")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Amount is not a valid number")
		return
	}

	result, err := h.sweepService.Sweep(c.Request.Context(), apptreasury.SweepRequest{
		OrgID:          orgID,
		EntityID:       entityID,
		OrderType:      orderType,
		AccountID:      req.AccountID,
		Amount:         amount,
		ChequeIssuer:   req.ChequeIssuer,
		ChequeBank:     req.ChequeBank,
		ChequeNumber:   req.ChequeNumber,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
