package models

import (
	"time"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/token"
)

const (
	minAge = 1
	maxAge = 150
)

// Member is a student, lecturer, staff member or patient of one institution.
//
// Invariants:
//   - Kind is allowed for the owning institution's kind (checked at creation)
//   - Principal is non-empty; uniqueness per institution is a store concern
//   - Age is within 1..150
//   - Balance only moves through Credit and Drain
type Member struct {
	ID            id.MemberID      `json:"id"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	Kind          MemberKind       `json:"kind"`
	Principal     id.Principal     `json:"principal"`
	Name          string           `json:"name"`
	Gender        Gender           `json:"gender"`
	Age           int              `json:"age"`
	Contact       string           `json:"contact"`
	Address       string           `json:"address"`
	Role          string           `json:"role,omitempty"`
	Status        MemberStatus     `json:"status"`
	Paid          bool             `json:"paid"`
	Balance       token.Amount     `json:"balance"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// MemberFields are the caller-supplied attributes of a new member.
type MemberFields struct {
	Kind      MemberKind
	Principal id.Principal
	Name      string
	Gender    Gender
	Age       int
	Contact   string
	Address   string
	Role      string
}

func (f *MemberFields) Normalize() {
	f.Kind = MemberKind(normalizeEnum(string(f.Kind)))
	f.Principal = id.NormalizePrincipal(string(f.Principal))
	f.Name = trim(f.Name)
	f.Gender = Gender(normalizeEnum(string(f.Gender)))
	f.Contact = trim(f.Contact)
	f.Address = trim(f.Address)
	f.Role = trim(f.Role)
}

// MemberPatch carries optional replacements. Name, Contact and Address are
// self-service fields; Status, Role, Gender and Age are owner-only.
type MemberPatch struct {
	Name    *string
	Contact *string
	Address *string

	Status *MemberStatus
	Role   *string
	Gender *Gender
	Age    *int
}

// TouchesOwnerFields reports whether applying p needs owner authority.
func (p MemberPatch) TouchesOwnerFields() bool {
	return p.Status != nil || p.Role != nil || p.Gender != nil || p.Age != nil
}

func (p MemberPatch) IsEmpty() bool {
	return p.Name == nil && p.Contact == nil && p.Address == nil && !p.TouchesOwnerFields()
}

// NewMember builds a member of inst. Kind compatibility is checked against
// the institution here because it is the only cross-aggregate invariant.
func NewMember(memberID id.MemberID, inst *Institution, f MemberFields, now time.Time) (*Member, error) {
	if inst == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member must belong to an institution")
	}
	if !f.Kind.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "member kind must be one of %s", joinKinds(memberKinds))
	}
	if !inst.AllowsMember(f.Kind) {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "a %s cannot have %s members", inst.Kind, f.Kind)
	}
	m := &Member{
		ID:            memberID,
		InstitutionID: inst.ID,
		Kind:          f.Kind,
		Principal:     f.Principal,
		Name:          f.Name,
		Gender:        f.Gender,
		Age:           f.Age,
		Contact:       f.Contact,
		Address:       f.Address,
		Role:          f.Role,
		Status:        MemberStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the field invariants of the whole record.
func (m *Member) Validate() error {
	if m.Principal.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "member principal cannot be empty")
	}
	if err := requireText("member name", m.Name, maxNameLength); err != nil {
		return err
	}
	if !m.Gender.IsValid() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "gender must be one of %s", joinKinds(genders))
	}
	if m.Age < minAge || m.Age > maxAge {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "age must be between %d and %d", minAge, maxAge)
	}
	if err := requireText("contact", m.Contact, maxTextLength); err != nil {
		return err
	}
	if err := requireText("address", m.Address, maxTextLength); err != nil {
		return err
	}
	if err := limitText("role", m.Role, maxNameLength); err != nil {
		return err
	}
	if !m.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "status must be one of %s", joinKinds(memberStatuses))
	}
	return nil
}

// WithPatch returns a validated copy with p applied.
func (m *Member) WithPatch(p MemberPatch, now time.Time) (*Member, error) {
	next := *m
	if p.Name != nil {
		next.Name = trim(*p.Name)
	}
	if p.Contact != nil {
		next.Contact = trim(*p.Contact)
	}
	if p.Address != nil {
		next.Address = trim(*p.Address)
	}
	if p.Status != nil {
		next.Status = MemberStatus(normalizeEnum(string(*p.Status)))
	}
	if p.Role != nil {
		next.Role = trim(*p.Role)
	}
	if p.Gender != nil {
		next.Gender = Gender(normalizeEnum(string(*p.Gender)))
	}
	if p.Age != nil {
		next.Age = *p.Age
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	return &next, nil
}

// Credit adds funds to the member's sub-balance.
func (m *Member) Credit(f token.Funds, now time.Time) error {
	next, err := token.Add(m.Balance, f.Value())
	if err != nil {
		return err
	}
	m.Balance = next
	m.UpdatedAt = now
	return nil
}

// Drain empties the sub-balance and returns it.
func (m *Member) Drain(now time.Time) token.Funds {
	out := token.Mint(m.Balance)
	m.Balance = 0
	m.UpdatedAt = now
	return out
}

// MarkPaid records that the member has settled a fee.
func (m *Member) MarkPaid(now time.Time) {
	m.Paid = true
	m.UpdatedAt = now
}
