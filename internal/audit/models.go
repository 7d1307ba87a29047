package audit

import (
	"time"

	id "bursar/pkg/domain"
	"bursar/pkg/token"
)

// Action names a committed ledger or registry mutation.
type Action string

const (
	ActionInstitutionCreated Action = "institution_created"
	ActionInstitutionUpdated Action = "institution_updated"
	ActionMemberAdded        Action = "member_added"
	ActionMemberUpdated      Action = "member_updated"
	ActionMemberRemoved      Action = "member_removed"
	ActionDeposit            Action = "deposit"
	ActionWithdrawal         Action = "withdrawal"
	ActionRefund             Action = "refund"
	ActionMemberPaid         Action = "member_paid"
	ActionMemberWithdrawal   Action = "member_withdrawal"
	ActionFeeGenerated       Action = "fee_generated"
	ActionFeePaid            Action = "fee_paid"
	ActionItemAdded          Action = "item_added"
	ActionItemUpdated        Action = "item_updated"
	ActionItemAssigned       Action = "item_assigned"
	ActionItemRemoved        Action = "item_removed"
)

// Event is emitted after a mutation commits. Keep it transport-agnostic so
// sinks can fan out.
type Event struct {
	Action        Action           `json:"action"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	MemberID      *id.MemberID     `json:"member_id,omitempty"`
	SubjectID     string           `json:"subject_id,omitempty"`
	Actor         id.Principal     `json:"actor,omitempty"`
	Amount        token.Amount     `json:"amount,omitempty"`
	RequestID     string           `json:"request_id,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}
