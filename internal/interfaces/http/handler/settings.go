package handler

import (
	"github.com/gin-gonic/gin"

	apporg "github.com/karobar/backend/internal/application/org"
)

// SettingsHandler exposes organization-level ordering configuration
type SettingsHandler struct {
	BaseHandler
	settingsService *apporg.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *apporg.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
	}
}

// Get returns the org's settings
func (h *SettingsHandler) Get(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Update changes the org's VAT policy
func (h *SettingsHandler) Update(c *gin.Context) {
	orgID, ok := h.getOrgID(c)
	if !ok {
		return
	}

	var req apporg.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}
