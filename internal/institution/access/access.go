// Package access decides whether a caller may act on an institution.
//
// Two modes exist. Capability mode: the caller presents the token minted with
// the institution, which grants owner-level authority. Principal mode: the
// caller's authenticated identity equals the principal stored on the record
// (the institution owner, or a member acting on itself). There is no role
// hierarchy. Every failure is CodeUnauthorized and no check mutates state.
package access

import (
	"context"
	"errors"

	"bursar/internal/institution/models"
	"bursar/internal/institution/secrets"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/platform/sentinel"
)

// Credentials is what a caller presents with a request.
type Credentials struct {
	Principal  id.Principal
	Capability string
}

// HasCapability reports whether a capability token was presented at all.
func (c Credentials) HasCapability() bool {
	return c.Capability != ""
}

// Authorize is the principal predicate: identities match and are non-empty.
func Authorize(presented, required id.Principal) bool {
	return !presented.IsZero() && presented == required
}

// CapabilityStore loads capabilities by id.
type CapabilityStore interface {
	FindByID(ctx context.Context, capID id.CapabilityID) (*models.Capability, error)
}

// Controller evaluates credentials against institutions and members.
type Controller struct {
	capabilities CapabilityStore
}

func NewController(capabilities CapabilityStore) *Controller {
	return &Controller{capabilities: capabilities}
}

var errUnauthorized = dErrors.New(dErrors.CodeUnauthorized, "caller is not authorized for this operation")

// RequireCapability checks that creds carry a valid capability bound to instID.
func (c *Controller) RequireCapability(ctx context.Context, creds Credentials, instID id.InstitutionID) error {
	if !creds.HasCapability() {
		return dErrors.New(dErrors.CodeUnauthorized, "capability required")
	}
	capID, secret, err := models.ParseCapabilityToken(creds.Capability)
	if err != nil {
		return err
	}
	capability, err := c.capabilities.FindByID(ctx, capID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errUnauthorized
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load capability")
	}
	if capability.InstitutionID != instID {
		return errUnauthorized
	}
	if err := secrets.Verify(secret, capability.SecretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return errUnauthorized
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify capability")
	}
	return nil
}

// RequireOwner accepts the owner principal or a capability for inst.
func (c *Controller) RequireOwner(ctx context.Context, creds Credentials, inst *models.Institution) error {
	if Authorize(creds.Principal, inst.Owner) {
		return nil
	}
	return c.RequireCapability(ctx, creds, inst.ID)
}

// RequireSelfOrOwner additionally accepts the member's own principal.
func (c *Controller) RequireSelfOrOwner(ctx context.Context, creds Credentials, inst *models.Institution, member *models.Member) error {
	if Authorize(creds.Principal, member.Principal) {
		return nil
	}
	return c.RequireOwner(ctx, creds, inst)
}

// RequirePrincipal accepts only the exact principal.
func (c *Controller) RequirePrincipal(creds Credentials, required id.Principal) error {
	if Authorize(creds.Principal, required) {
		return nil
	}
	return errUnauthorized
}
