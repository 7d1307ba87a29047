package service

import (
	"context"
	"errors"

	"bursar/internal/audit"
	"bursar/internal/institution/access"
	"bursar/internal/institution/models"
	"bursar/internal/institution/secrets"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/platform/sentinel"
	"bursar/pkg/requestcontext"
)

// CreateInstitution registers an institution owned by the caller and mints
// its capability. The returned token is the only time the secret is visible.
func (s *Service) CreateInstitution(ctx context.Context, creds access.Credentials, fields models.InstitutionFields) (_ *models.Institution, _ string, err error) {
	ctx, done := s.begin(ctx, "create_institution")
	defer done(&err)

	if creds.Principal.IsZero() {
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, "an authenticated principal is required")
	}
	fields.Normalize()
	now := requestcontext.Now(ctx)

	inst, err := models.NewInstitution(id.NewInstitutionID(), creds.Principal, fields, now)
	if err != nil {
		return nil, "", validationErr(err)
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate capability secret")
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash capability secret")
	}
	capability, err := models.NewCapability(id.NewCapabilityID(), inst.ID, hash, now)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint capability")
	}

	err = s.tx.RunInTx(ctx, inst.ID, func(ctx context.Context, st Stores) error {
		create := st.Institutions.Create
		if s.oneInstitutionPerOwner {
			create = st.Institutions.CreateIfOwnerAvailable
		}
		if err := create(ctx, inst); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "owner already has an institution")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create institution")
		}
		if err := st.Capabilities.Create(ctx, capability); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store capability")
		}
		return nil
	})
	if err != nil {
		return nil, "", internalErr(err, "failed to create institution")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionInstitutionCreated, InstitutionID: inst.ID, Actor: creds.Principal}, inst)
	if s.metrics != nil {
		s.metrics.InstitutionsCreated.Inc()
	}
	return inst, models.FormatCapabilityToken(capability.ID, secret), nil
}

// GetInstitution is a public read served through the cache when configured.
func (s *Service) GetInstitution(ctx context.Context, instID id.InstitutionID) (_ *models.Institution, err error) {
	ctx, done := s.begin(ctx, "get_institution")
	defer done(&err)

	if s.cache != nil {
		inst, err := s.cache.Get(ctx, instID)
		if err == nil {
			return inst, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "institution cache read failed", "institution_id", instID.String(), "error", err)
		}
	}

	inst, err := loadInstitution(ctx, s.stores, instID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Add(ctx, inst); err != nil {
			s.logger.WarnContext(ctx, "institution cache write failed", "institution_id", instID.String(), "error", err)
		}
	}
	return inst, nil
}

// GetInstitutionByOwner returns the institution indexed for owner.
func (s *Service) GetInstitutionByOwner(ctx context.Context, owner id.Principal) (_ *models.Institution, err error) {
	ctx, done := s.begin(ctx, "get_institution_by_owner")
	defer done(&err)

	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	inst, err := s.stores.Institutions.FindByOwner(ctx, owner)
	if err != nil {
		return nil, translateStoreErr(err, "institution not found", "failed to load institution")
	}
	return inst, nil
}

// UpdateInstitution replaces descriptive fields. Requires the capability.
func (s *Service) UpdateInstitution(ctx context.Context, creds access.Credentials, instID id.InstitutionID, patch models.InstitutionPatch) (_ *models.Institution, err error) {
	ctx, done := s.begin(ctx, "update_institution")
	defer done(&err)

	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	var updated *models.Institution
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		next, err := inst.WithPatch(patch, requestcontext.Now(ctx))
		if err != nil {
			return validationErr(err)
		}
		if err := st.Institutions.Update(ctx, next); err != nil {
			return translateStoreErr(err, "institution not found", "failed to update institution")
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to update institution")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionInstitutionUpdated, InstitutionID: instID, Actor: creds.Principal}, updated)
	return updated, nil
}

// AddMember registers a member. Requires the capability.
func (s *Service) AddMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, fields models.MemberFields) (_ *models.Member, err error) {
	ctx, done := s.begin(ctx, "add_member")
	defer done(&err)

	fields.Normalize()
	var member *models.Member
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		m, err := models.NewMember(id.NewMemberID(), inst, fields, requestcontext.Now(ctx))
		if err != nil {
			return validationErr(err)
		}
		if err := st.Members.Create(ctx, m); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "principal is already a member of this institution")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create member")
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to add member")
	}

	memberID := member.ID
	s.committed(ctx, audit.Event{Action: audit.ActionMemberAdded, InstitutionID: instID, MemberID: &memberID, Actor: creds.Principal}, nil)
	if s.metrics != nil {
		s.metrics.MembersAdded.Inc()
	}
	return member, nil
}

// UpdateMember applies patch. Contact fields accept the member itself, the
// owner principal or the capability; status fields need owner authority.
func (s *Service) UpdateMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID, patch models.MemberPatch) (_ *models.Member, err error) {
	ctx, done := s.begin(ctx, "update_member")
	defer done(&err)

	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	var updated *models.Member
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		inst, err := loadInstitution(ctx, st, instID)
		if err != nil {
			return err
		}
		member, err := loadMember(ctx, st, instID, memberID)
		if err != nil {
			return err
		}
		if patch.TouchesOwnerFields() {
			err = s.access.RequireOwner(ctx, creds, inst)
		} else {
			err = s.access.RequireSelfOrOwner(ctx, creds, inst, member)
		}
		if err != nil {
			return err
		}
		next, err := member.WithPatch(patch, requestcontext.Now(ctx))
		if err != nil {
			return validationErr(err)
		}
		if err := st.Members.Update(ctx, next); err != nil {
			return translateStoreErr(err, "member not found", "failed to update member")
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to update member")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionMemberUpdated, InstitutionID: instID, MemberID: &memberID, Actor: creds.Principal}, nil)
	return updated, nil
}

// RemoveMember deletes a member that owes nothing and holds nothing. Items
// assigned to the member are unassigned in the same transaction.
func (s *Service) RemoveMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID) (err error) {
	ctx, done := s.begin(ctx, "remove_member")
	defer done(&err)

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
		unpaid, err := st.Fees.CountByMember(ctx, instID, memberID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count fees")
		}
		if unpaid > 0 {
			return dErrors.Newf(dErrors.CodeOutstandingObligation, "member has %d unpaid fee(s)", unpaid)
		}
		if member.Balance > 0 {
			return dErrors.New(dErrors.CodeOutstandingObligation, "member still holds a balance")
		}
		if _, err := st.Items.UnassignMember(ctx, instID, memberID, requestcontext.Now(ctx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unassign items")
		}
		if err := st.Members.Delete(ctx, instID, memberID); err != nil {
			return translateStoreErr(err, "member not found", "failed to delete member")
		}
		return nil
	})
	if err != nil {
		return internalErr(err, "failed to remove member")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionMemberRemoved, InstitutionID: instID, MemberID: &memberID, Actor: creds.Principal}, nil)
	if s.metrics != nil {
		s.metrics.MembersRemoved.Inc()
	}
	return nil
}

// GetMember is a public read.
func (s *Service) GetMember(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) (_ *models.Member, err error) {
	ctx, done := s.begin(ctx, "get_member")
	defer done(&err)
	return loadMember(ctx, s.stores, instID, memberID)
}

// ListMembers returns the institution's members, optionally filtered by kind.
func (s *Service) ListMembers(ctx context.Context, instID id.InstitutionID, kinds ...models.MemberKind) (_ []*models.Member, err error) {
	ctx, done := s.begin(ctx, "list_members")
	defer done(&err)

	if _, err := s.GetInstitution(ctx, instID); err != nil {
		return nil, err
	}
	members, err := s.stores.Members.ListByInstitution(ctx, instID, kinds)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list members")
	}
	return members, nil
}
