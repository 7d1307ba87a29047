package models

import (
	"strings"
	"time"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
)

// Capability authorizes owner-level operations on one institution. Holders
// present it as "<capability-id>.<secret>"; only the bcrypt hash of the
// secret is stored.
type Capability struct {
	ID            id.CapabilityID  `json:"id"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	SecretHash    string           `json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
}

func NewCapability(capID id.CapabilityID, instID id.InstitutionID, secretHash string, now time.Time) (*Capability, error) {
	if instID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "capability must reference an institution")
	}
	if secretHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "capability secret hash cannot be empty")
	}
	return &Capability{ID: capID, InstitutionID: instID, SecretHash: secretHash, CreatedAt: now}, nil
}

// FormatCapabilityToken renders the presentable token for a capability.
func FormatCapabilityToken(capID id.CapabilityID, secret string) string {
	return capID.String() + "." + secret
}

// ParseCapabilityToken splits a presented token into its id and secret.
func ParseCapabilityToken(token string) (id.CapabilityID, string, error) {
	rawID, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || secret == "" {
		return id.CapabilityID{}, "", dErrors.New(dErrors.CodeUnauthorized, "malformed capability")
	}
	capID, err := id.ParseCapabilityID(rawID)
	if err != nil {
		return id.CapabilityID{}, "", dErrors.New(dErrors.CodeUnauthorized, "malformed capability")
	}
	return capID, secret, nil
}
