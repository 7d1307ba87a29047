package models

import (
	"time"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/token"
)

// Fee is an outstanding charge against a member. A stored fee is unpaid by
// definition: paying it removes it.
type Fee struct {
	ID            id.FeeID         `json:"id"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	MemberID      id.MemberID      `json:"member_id"`
	Amount        token.Amount     `json:"amount"`
	Description   string           `json:"description,omitempty"`
	DueAt         time.Time        `json:"due_at"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewFee charges member for amount, due dueIn after now.
func NewFee(feeID id.FeeID, member *Member, amount token.Amount, description string, dueIn time.Duration, now time.Time) (*Fee, error) {
	if member == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fee must reference a member")
	}
	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fee amount must be positive")
	}
	if dueIn <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fee due interval must be positive")
	}
	description = trim(description)
	if err := limitText("description", description, maxTextLength); err != nil {
		return nil, err
	}
	return &Fee{
		ID:            feeID,
		InstitutionID: member.InstitutionID,
		MemberID:      member.ID,
		Amount:        amount,
		Description:   description,
		DueAt:         now.Add(dueIn),
		CreatedAt:     now,
	}, nil
}

// CheckPayment reports whether payment settles the fee at now. The amount is
// checked before the deadline.
func (f *Fee) CheckPayment(payment token.Amount, now time.Time) error {
	if payment != f.Amount {
		return dErrors.Newf(dErrors.CodeAmountMismatch, "payment %d does not match fee amount %d", payment, f.Amount)
	}
	if f.IsExpired(now) {
		return dErrors.New(dErrors.CodeExpired, "fee is past its due date")
	}
	return nil
}

// IsExpired reports now > DueAt. Paying exactly at the deadline is allowed.
func (f *Fee) IsExpired(now time.Time) bool {
	return now.After(f.DueAt)
}
