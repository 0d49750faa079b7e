package org

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
)

// VatStatus controls whether order drafts must, may, or must not carry
// a VAT charge.
type VatStatus string

const (
	// VatStatusAlways forces a VAT charge on every order; it cannot be removed
	VatStatusAlways VatStatus = "always"
	// VatStatusNever forbids adding a VAT charge
	VatStatusNever VatStatus = "never"
	// VatStatusConditional leaves VAT to the user
	VatStatusConditional VatStatus = "conditional"
)

// IsValid checks if the status is a known VatStatus
func (s VatStatus) IsValid() bool {
	switch s {
	case VatStatusAlways, VatStatusNever, VatStatusConditional:
		return true
	}
	return false
}

// StandardVatRate is the statutory VAT percentage applied when a VAT
// charge is auto-inserted.
var StandardVatRate = decimal.NewFromInt(13)

// Settings holds organization-level configuration relevant to ordering
type Settings struct {
	shared.BaseAggregateRoot
	OrgID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	VatStatus VatStatus
}

// NewSettings creates settings for an organization
func NewSettings(orgID uuid.UUID, vatStatus VatStatus) (*Settings, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if !vatStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_STATUS", "VAT status must be always, never or conditional")
	}

	return &Settings{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrgID:             orgID,
		VatStatus:         vatStatus,
	}, nil
}

// TableName returns the database table name
func (Settings) TableName() string {
	return "org_settings"
}

// SettingsRepository defines persistence operations for org settings
type SettingsRepository interface {
	FindByOrg(ctx context.Context, orgID uuid.UUID) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}
