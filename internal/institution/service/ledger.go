package service

import (
	"context"

	"bursar/internal/audit"
	"bursar/internal/institution/access"
	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/requestcontext"
	"bursar/pkg/token"
)

// Deposit credits funds to the institution balance. Who may deposit is
// governed by the configured DepositPolicy.
func (s *Service) Deposit(ctx context.Context, creds access.Credentials, instID id.InstitutionID, funds token.Funds) (_ *models.Institution, err error) {
	ctx, done := s.begin(ctx, "deposit")
	defer done(&err)

	if funds.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "deposit amount must be positive")
	}
	var updated *models.Institution
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		if s.depositPolicy == DepositOwner {
			if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
				return err
			}
		}
		if err := inst.Credit(funds, requestcontext.Now(ctx)); err != nil {
			return validationErr(err)
		}
		if err := st.Institutions.Update(ctx, inst); err != nil {
			return translateStoreErr(err, "institution not found", "failed to update balance")
		}
		updated = inst
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "deposit failed")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionDeposit, InstitutionID: instID, Actor: creds.Principal, Amount: funds.Value()}, updated)
	s.observeMovement("deposit", funds.Value())
	return updated, nil
}

// PayMember moves amount from the institution balance to a member's
// sub-balance. Debit and credit commit together.
func (s *Service) PayMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID, amount token.Amount) (_ *models.Member, err error) {
	ctx, done := s.begin(ctx, "pay_member")
	defer done(&err)

	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "payment amount must be positive")
	}
	var (
		paid    *models.Member
		debited *models.Institution
	)
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		member, err := loadMember(ctx, st, instID, memberID)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		funds, err := inst.Debit(amount, now)
		if err != nil {
			return err
		}
		if err := member.Credit(funds, now); err != nil {
			return validationErr(err)
		}
		if err := st.Institutions.Update(ctx, inst); err != nil {
			return translateStoreErr(err, "institution not found", "failed to update balance")
		}
		if err := st.Members.Update(ctx, member); err != nil {
			return translateStoreErr(err, "member not found", "failed to update member balance")
		}
		paid, debited = member, inst
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "member payment failed")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionMemberPaid, InstitutionID: instID, MemberID: &memberID, Actor: creds.Principal, Amount: amount}, debited)
	s.observeMovement("pay_member", amount)
	return paid, nil
}

// Withdraw zeroes the institution balance and returns all of it. An empty
// balance yields zero funds.
func (s *Service) Withdraw(ctx context.Context, creds access.Credentials, instID id.InstitutionID) (_ token.Funds, err error) {
	ctx, done := s.begin(ctx, "withdraw")
	defer done(&err)

	var (
		out     = token.Zero()
		drained *models.Institution
	)
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		funds, err := inst.Debit(inst.Balance, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := st.Institutions.Update(ctx, inst); err != nil {
			return translateStoreErr(err, "institution not found", "failed to update balance")
		}
		out, drained = funds, inst
		return nil
	})
	if err != nil {
		return token.Zero(), internalErr(err, "withdrawal failed")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionWithdrawal, InstitutionID: instID, Actor: creds.Principal, Amount: out.Value()}, drained)
	s.observeMovement("withdraw", out.Value())
	return out, nil
}

// Refund debits amount from the institution balance and returns it.
func (s *Service) Refund(ctx context.Context, creds access.Credentials, instID id.InstitutionID, amount token.Amount) (_ token.Funds, err error) {
	ctx, done := s.begin(ctx, "refund")
	defer done(&err)

	if amount == 0 {
		return token.Zero(), dErrors.New(dErrors.CodeValidation, "refund amount must be positive")
	}
	var (
		out      = token.Zero()
		refunded *models.Institution
	)
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		funds, err := inst.Debit(amount, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := st.Institutions.Update(ctx, inst); err != nil {
			return translateStoreErr(err, "institution not found", "failed to update balance")
		}
		out, refunded = funds, inst
		return nil
	})
	if err != nil {
		return token.Zero(), internalErr(err, "refund failed")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionRefund, InstitutionID: instID, Actor: creds.Principal, Amount: amount}, refunded)
	s.observeMovement("refund", amount)
	return out, nil
}

// WithdrawMember lets a member drain their own sub-balance.
func (s *Service) WithdrawMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID) (_ token.Funds, err error) {
	ctx, done := s.begin(ctx, "withdraw_member")
	defer done(&err)

	out := token.Zero()
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		if _, err := loadInstitution(ctx, st, instID); err != nil {
			return err
		}
		member, err := loadMember(ctx, st, instID, memberID)
		if err != nil {
			return err
		}
		if err := s.access.RequirePrincipal(creds, member.Principal); err != nil {
			return err
		}
		funds := member.Drain(requestcontext.Now(ctx))
		if err := st.Members.Update(ctx, member); err != nil {
			return translateStoreErr(err, "member not found", "failed to update member balance")
		}
		out = funds
		return nil
	})
	if err != nil {
		return token.Zero(), internalErr(err, "member withdrawal failed")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionMemberWithdrawal, InstitutionID: instID, MemberID: &memberID, Actor: creds.Principal, Amount: out.Value()}, nil)
	s.observeMovement("withdraw_member", out.Value())
	return out, nil
}
