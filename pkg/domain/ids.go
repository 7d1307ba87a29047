// Package domain holds typed identifiers shared across modules.
//
// Every record carries a globally unique identifier minted from a random
// UUID. Distinct named types keep an institution ID from being passed where a
// member ID is expected; the compiler rejects the mix-up.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "bursar/pkg/domain-errors"
)

type (
	InstitutionID uuid.UUID
	CapabilityID  uuid.UUID
	MemberID      uuid.UUID
	FeeID         uuid.UUID
	ItemID        uuid.UUID
)

func NewInstitutionID() InstitutionID { return InstitutionID(uuid.New()) }
func NewCapabilityID() CapabilityID   { return CapabilityID(uuid.New()) }
func NewMemberID() MemberID           { return MemberID(uuid.New()) }
func NewFeeID() FeeID                 { return FeeID(uuid.New()) }
func NewItemID() ItemID               { return ItemID(uuid.New()) }

func (id InstitutionID) String() string { return uuid.UUID(id).String() }
func (id CapabilityID) String() string  { return uuid.UUID(id).String() }
func (id MemberID) String() string      { return uuid.UUID(id).String() }
func (id FeeID) String() string         { return uuid.UUID(id).String() }
func (id ItemID) String() string        { return uuid.UUID(id).String() }

func (id InstitutionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CapabilityID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id MemberID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id FeeID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

func (id InstitutionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id CapabilityID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id MemberID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id FeeID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id ItemID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }

func (id *InstitutionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CapabilityID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MemberID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FeeID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ItemID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }

// ParseInstitutionID parses external input into an InstitutionID.
func ParseInstitutionID(s string) (InstitutionID, error) {
	u, err := parseUUID(s, "institution")
	return InstitutionID(u), err
}

// ParseCapabilityID parses external input into a CapabilityID.
func ParseCapabilityID(s string) (CapabilityID, error) {
	u, err := parseUUID(s, "capability")
	return CapabilityID(u), err
}

// ParseMemberID parses external input into a MemberID.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s, "member")
	return MemberID(u), err
}

// ParseFeeID parses external input into a FeeID.
func ParseFeeID(s string) (FeeID, error) {
	u, err := parseUUID(s, "fee")
	return FeeID(u), err
}

// ParseItemID parses external input into an ItemID.
func ParseItemID(s string) (ItemID, error) {
	u, err := parseUUID(s, "item")
	return ItemID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs with CodeInvalidInput.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}
