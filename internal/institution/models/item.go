package models

import (
	"time"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/token"
)

// Item is a subject, inventory line, appointment or room owned by an
// institution, optionally assigned to one of its members.
//
// Invariants:
//   - inventory items have Quantity > 0
//   - appointments have ScheduledAt
//   - Quantity × UnitPrice fits in an Amount
//   - AssigneeID, when set, names a live member of the same institution
//     (checked by the service, which can see the member store)
type Item struct {
	ID            id.ItemID        `json:"id"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	Kind          ItemKind         `json:"kind"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Quantity      uint64           `json:"quantity"`
	UnitPrice     token.Amount     `json:"unit_price"`
	ScheduledAt   *time.Time       `json:"scheduled_at,omitempty"`
	AssigneeID    *id.MemberID     `json:"assignee_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ItemFields are the caller-supplied attributes of a new item.
type ItemFields struct {
	Kind        ItemKind
	Name        string
	Description string
	Quantity    uint64
	UnitPrice   token.Amount
	ScheduledAt *time.Time
	AssigneeID  *id.MemberID
}

func (f *ItemFields) Normalize() {
	f.Kind = ItemKind(normalizeEnum(string(f.Kind)))
	f.Name = trim(f.Name)
	f.Description = trim(f.Description)
}

// ItemPatch carries optional replacements. Assignment has its own operation.
type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *uint64
	UnitPrice   *token.Amount
	ScheduledAt *time.Time
}

func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Quantity == nil && p.UnitPrice == nil && p.ScheduledAt == nil
}

func NewItem(itemID id.ItemID, instID id.InstitutionID, f ItemFields, now time.Time) (*Item, error) {
	item := &Item{
		ID:            itemID,
		InstitutionID: instID,
		Kind:          f.Kind,
		Name:          f.Name,
		Description:   f.Description,
		Quantity:      f.Quantity,
		UnitPrice:     f.UnitPrice,
		ScheduledAt:   f.ScheduledAt,
		AssigneeID:    f.AssigneeID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (it *Item) Validate() error {
	if !it.Kind.IsValid() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "item kind must be one of %s", joinKinds(itemKinds))
	}
	if err := requireText("item name", it.Name, maxNameLength); err != nil {
		return err
	}
	if err := limitText("description", it.Description, maxTextLength); err != nil {
		return err
	}
	if it.Kind == ItemKindInventory && it.Quantity == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "inventory quantity must be positive")
	}
	if it.Kind == ItemKindAppointment && (it.ScheduledAt == nil || it.ScheduledAt.IsZero()) {
		return dErrors.New(dErrors.CodeInvariantViolation, "appointment requires a scheduled time")
	}
	if _, err := it.Value(); err != nil {
		return err
	}
	return nil
}

// Value is Quantity × UnitPrice.
func (it *Item) Value() (token.Amount, error) {
	v, err := token.Mul(it.UnitPrice, it.Quantity)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "quantity × unit price overflows")
	}
	return v, nil
}

// WithPatch returns a validated copy with p applied.
func (it *Item) WithPatch(p ItemPatch, now time.Time) (*Item, error) {
	next := *it
	if p.Name != nil {
		next.Name = trim(*p.Name)
	}
	if p.Description != nil {
		next.Description = trim(*p.Description)
	}
	if p.Quantity != nil {
		next.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		next.UnitPrice = *p.UnitPrice
	}
	if p.ScheduledAt != nil {
		at := *p.ScheduledAt
		next.ScheduledAt = &at
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	return &next, nil
}

// Assign sets or clears (nil) the assignee.
func (it *Item) Assign(memberID *id.MemberID, now time.Time) {
	if memberID == nil {
		it.AssigneeID = nil
	} else {
		m := *memberID
		it.AssigneeID = &m
	}
	it.UpdatedAt = now
}

// InventoryValue sums Value over items, failing on overflow.
func InventoryValue(items []*Item) (token.Amount, error) {
	var total token.Amount
	for _, it := range items {
		v, err := it.Value()
		if err != nil {
			return 0, err
		}
		total, err = token.Add(total, v)
		if err != nil {
			return 0, dErrors.New(dErrors.CodeInvariantViolation, "inventory value overflows")
		}
	}
	return total, nil
}
