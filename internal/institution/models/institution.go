package models

import (
	"time"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/token"
)

// Institution is the aggregate root for a school or hospital.
//
// Invariants:
//   - Owner is a non-empty principal fixed at creation
//   - Kind is school or hospital and never changes
//   - Name is non-empty and at most 128 characters
//   - Location, Contact and Category are non-empty
//   - Balance only moves through Credit and Debit
type Institution struct {
	ID        id.InstitutionID `json:"id"`
	Owner     id.Principal     `json:"owner"`
	Kind      InstitutionKind  `json:"kind"`
	Name      string           `json:"name"`
	Location  string           `json:"location"`
	Contact   string           `json:"contact"`
	Category  string           `json:"category"`
	Balance   token.Amount     `json:"balance"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// InstitutionFields are the caller-supplied attributes of a new institution.
type InstitutionFields struct {
	Kind     InstitutionKind
	Name     string
	Location string
	Contact  string
	Category string
}

// Normalize trims whitespace and lowercases the kind.
func (f *InstitutionFields) Normalize() {
	f.Kind = InstitutionKind(normalizeEnum(string(f.Kind)))
	f.Name = trim(f.Name)
	f.Location = trim(f.Location)
	f.Contact = trim(f.Contact)
	f.Category = trim(f.Category)
}

// InstitutionPatch carries optional replacements for descriptive fields.
type InstitutionPatch struct {
	Name     *string
	Location *string
	Contact  *string
	Category *string
}

func (p InstitutionPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.Contact == nil && p.Category == nil
}

func NewInstitution(instID id.InstitutionID, owner id.Principal, f InstitutionFields, now time.Time) (*Institution, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution owner cannot be empty")
	}
	inst := &Institution{
		ID:        instID,
		Owner:     owner,
		Kind:      f.Kind,
		Name:      f.Name,
		Location:  f.Location,
		Contact:   f.Contact,
		Category:  f.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks every field invariant.
func (i *Institution) Validate() error {
	if !i.Kind.IsValid() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "institution kind must be one of %s", joinKinds(institutionKinds))
	}
	if err := requireText("institution name", i.Name, maxNameLength); err != nil {
		return err
	}
	if err := requireText("location", i.Location, maxTextLength); err != nil {
		return err
	}
	if err := requireText("contact", i.Contact, maxTextLength); err != nil {
		return err
	}
	return requireText("category", i.Category, maxTextLength)
}

// WithPatch returns a validated copy with the patch applied. The receiver is
// left untouched so a failed update has no effect.
func (i *Institution) WithPatch(p InstitutionPatch, now time.Time) (*Institution, error) {
	next := *i
	if p.Name != nil {
		next.Name = trim(*p.Name)
	}
	if p.Location != nil {
		next.Location = trim(*p.Location)
	}
	if p.Contact != nil {
		next.Contact = trim(*p.Contact)
	}
	if p.Category != nil {
		next.Category = trim(*p.Category)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	return &next, nil
}

// AllowsMember reports whether members of kind k may join this institution.
func (i *Institution) AllowsMember(k MemberKind) bool {
	return i.Kind.Allows(k)
}

// Credit adds funds to the balance.
func (i *Institution) Credit(f token.Funds, now time.Time) error {
	next, err := token.Add(i.Balance, f.Value())
	if err != nil {
		return err
	}
	i.Balance = next
	i.UpdatedAt = now
	return nil
}

// Debit removes amount from the balance and returns it as funds.
func (i *Institution) Debit(amount token.Amount, now time.Time) (token.Funds, error) {
	taken, rest, err := token.Mint(i.Balance).Split(amount)
	if err != nil {
		return token.Zero(), dErrors.Newf(dErrors.CodeInsufficientBalance,
			"institution balance %d is below %d", i.Balance, amount)
	}
	i.Balance = rest.Value()
	i.UpdatedAt = now
	return taken, nil
}
