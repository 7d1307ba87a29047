package service

import (
	"context"
	"time"

	"bursar/internal/audit"
	"bursar/internal/institution/access"
	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/requestcontext"
	"bursar/pkg/token"
)

// GenerateFee charges a member, due dueIn from now. Requires the capability.
func (s *Service) GenerateFee(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID, amount token.Amount, description string, dueIn time.Duration) (_ *models.Fee, err error) {
	ctx, done := s.begin(ctx, "generate_fee")
	defer done(&err)

	var fee *models.Fee
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		if _, err := loadInstitution(ctx, st, instID); err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		member, err := loadMember(ctx, st, instID, memberID)
		if err != nil {
			return err
		}
		f, err := models.NewFee(id.NewFeeID(), member, amount, description, dueIn, requestcontext.Now(ctx))
		if err != nil {
			return validationErr(err)
		}
		if err := st.Fees.Create(ctx, f); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create fee")
		}
		fee = f
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to generate fee")
	}

	s.committed(ctx, audit.Event{
		Action:        audit.ActionFeeGenerated,
		InstitutionID: instID,
		MemberID:      &memberID,
		SubjectID:     fee.ID.String(),
		Actor:         creds.Principal,
		Amount:        fee.Amount,
	}, nil)
	return fee, nil
}

// PayFee settles a fee with payment. Anyone holding the payment may pay.
// The payment must equal the fee amount and arrive no later than the due
// date. On success the institution is credited, the member is marked paid
// and the fee is removed, all in one transaction.
func (s *Service) PayFee(ctx context.Context, creds access.Credentials, instID id.InstitutionID, feeID id.FeeID, payment token.Funds) (_ *models.Member, err error) {
	ctx, done := s.begin(ctx, "pay_fee")
	defer done(&err)
	defer func() {
		if s.metrics == nil {
			return
		}
		outcome := "paid"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
		}
		s.metrics.ObserveFeePayment(outcome)
	}()

	var (
		payer    *models.Member
		fee      *models.Fee
		credited *models.Institution
	)
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		f, err := st.Fees.FindByID(ctx, instID, feeID)
		if err != nil {
			return translateStoreErr(err, "fee not found", "failed to load fee")
		}
		now := requestcontext.Now(ctx)
		if err := f.CheckPayment(payment.Value(), now); err != nil {
			return err
		}
		member, err := loadMember(ctx, st, instID, f.MemberID)
		if err != nil {
			return err
		}
		if err := inst.Credit(payment, now); err != nil {
			return validationErr(err)
		}
		member.MarkPaid(now)

		if err := st.Institutions.Update(ctx, inst); err != nil {
			return translateStoreErr(err, "institution not found", "failed to update balance")
		}
		if err := st.Members.Update(ctx, member); err != nil {
			return translateStoreErr(err, "member not found", "failed to mark member paid")
		}
		if err := st.Fees.Delete(ctx, instID, feeID); err != nil {
			return translateStoreErr(err, "fee not found", "failed to remove fee")
		}
		payer, fee, credited = member, f, inst
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "fee payment failed")
	}

	memberID := fee.MemberID
	s.committed(ctx, audit.Event{
		Action:        audit.ActionFeePaid,
		InstitutionID: instID,
		MemberID:      &memberID,
		SubjectID:     feeID.String(),
		Actor:         creds.Principal,
		Amount:        fee.Amount,
	}, credited)
	s.observeMovement("pay_fee", fee.Amount)
	return payer, nil
}

// GetFee is a public read.
func (s *Service) GetFee(ctx context.Context, instID id.InstitutionID, feeID id.FeeID) (_ *models.Fee, err error) {
	ctx, done := s.begin(ctx, "get_fee")
	defer done(&err)

	f, err := s.stores.Fees.FindByID(ctx, instID, feeID)
	if err != nil {
		return nil, translateStoreErr(err, "fee not found", "failed to load fee")
	}
	return f, nil
}

// ListFees returns unpaid fees, optionally for one member.
func (s *Service) ListFees(ctx context.Context, instID id.InstitutionID, memberID *id.MemberID) (_ []*models.Fee, err error) {
	ctx, done := s.begin(ctx, "list_fees")
	defer done(&err)

	if _, err := s.GetInstitution(ctx, instID); err != nil {
		return nil, err
	}
	fees, err := s.stores.Fees.ListByInstitution(ctx, instID, memberID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fees")
	}
	return fees, nil
}
