package org

import (
	"context"

	"github.com/google/uuid"

	"github.com/karobar/backend/internal/domain/org"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

// SettingsService manages organization-level ordering configuration
type SettingsService struct {
	settingsRepo org.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo org.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// UpdateSettingsRequest changes the org's VAT policy
type UpdateSettingsRequest struct {
	VatStatus string `json:"vat_status" binding:"required,oneof=always never conditional"`
}

// SettingsResponse is the serialized org configuration
type SettingsResponse struct {
	OrgID     uuid.UUID `json:"org_id"`
	VatStatus string    `json:"vat_status"`
}

// Get returns the org's settings, defaulting to conditional VAT when
// none have been saved yet
func (s *SettingsService) Get(ctx context.Context, orgID uuid.UUID) (*SettingsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settings", "get")
	defer span.End()

	settings, err := s.settingsRepo.FindByOrg(ctx, orgID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	vatStatus := org.VatStatusConditional
	if settings != nil {
		vatStatus = settings.VatStatus
	}

	return &SettingsResponse{OrgID: orgID, VatStatus: string(vatStatus)}, nil
}

// Update changes the org's VAT policy. New drafts pick up the change;
// drafts already in progress keep the policy they started with.
func (s *SettingsService) Update(ctx context.Context, orgID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settings", "update")
	defer span.End()
	telemetry.SetAttribute(span, "vat_status", req.VatStatus)

	settings, err := s.settingsRepo.FindByOrg(ctx, orgID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if settings == nil {
		settings, err = org.NewSettings(orgID, org.VatStatus(req.VatStatus))
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	} else {
		status := org.VatStatus(req.VatStatus)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_VAT_STATUS", "VAT status must be always, never or conditional")
		}
		settings.VatStatus = status
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &SettingsResponse{OrgID: orgID, VatStatus: string(settings.VatStatus)}, nil
}
