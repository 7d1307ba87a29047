package service

import (
	"context"
	"errors"

	"bursar/internal/audit"
	"bursar/internal/institution/access"
	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/platform/sentinel"
	"bursar/pkg/requestcontext"
	"bursar/pkg/token"
)

// AddItem registers a subject, inventory line, appointment or room.
func (s *Service) AddItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, fields models.ItemFields) (_ *models.Item, err error) {
	ctx, done := s.begin(ctx, "add_item")
	defer done(&err)

	fields.Normalize()
	var item *models.Item
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		if _, err := loadInstitution(ctx, st, instID); err != nil {
			return err
		}
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		it, err := models.NewItem(id.NewItemID(), instID, fields, requestcontext.Now(ctx))
		if err != nil {
			return validationErr(err)
		}
		if err := requireAssignee(ctx, st, instID, it.AssigneeID); err != nil {
			return err
		}
		if err := st.Items.Create(ctx, it); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to add item")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionItemAdded, InstitutionID: instID, SubjectID: item.ID.String(), Actor: creds.Principal}, nil)
	return item, nil
}

// UpdateItem replaces descriptive fields of an item.
func (s *Service) UpdateItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, itemID id.ItemID, patch models.ItemPatch) (_ *models.Item, err error) {
	ctx, done := s.begin(ctx, "update_item")
	defer done(&err)

	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	var updated *models.Item
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		it, err := loadItem(ctx, st, instID, itemID)
		if err != nil {
			return err
		}
		next, err := it.WithPatch(patch, requestcontext.Now(ctx))
		if err != nil {
			return validationErr(err)
		}
		if err := st.Items.Update(ctx, next); err != nil {
			return translateStoreErr(err, "item not found", "failed to update item")
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to update item")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionItemUpdated, InstitutionID: instID, SubjectID: itemID.String(), Actor: creds.Principal}, nil)
	return updated, nil
}

// AssignItem sets the item's assignee, or clears it when memberID is nil.
func (s *Service) AssignItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, itemID id.ItemID, memberID *id.MemberID) (_ *models.Item, err error) {
	ctx, done := s.begin(ctx, "assign_item")
	defer done(&err)

	var updated *models.Item
	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		it, err := loadItem(ctx, st, instID, itemID)
		if err != nil {
			return err
		}
		if err := requireAssignee(ctx, st, instID, memberID); err != nil {
			return err
		}
		it.Assign(memberID, requestcontext.Now(ctx))
		if err := st.Items.Update(ctx, it); err != nil {
			return translateStoreErr(err, "item not found", "failed to assign item")
		}
		updated = it
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "failed to assign item")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionItemAssigned, InstitutionID: instID, MemberID: memberID, SubjectID: itemID.String(), Actor: creds.Principal}, nil)
	return updated, nil
}

// RemoveItem deletes an item.
func (s *Service) RemoveItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, itemID id.ItemID) (err error) {
	ctx, done := s.begin(ctx, "remove_item")
	defer done(&err)

	err = s.tx.RunInTx(ctx, instID, func(ctx context.Context, st Stores) error {
		if err := s.access.RequireCapability(ctx, creds, instID); err != nil {
			return err
		}
		if err := st.Items.Delete(ctx, instID, itemID); err != nil {
			return translateStoreErr(err, "item not found", "failed to remove item")
		}
		return nil
	})
	if err != nil {
		return internalErr(err, "failed to remove item")
	}

	s.committed(ctx, audit.Event{Action: audit.ActionItemRemoved, InstitutionID: instID, SubjectID: itemID.String(), Actor: creds.Principal}, nil)
	return nil
}

// GetItem is a public read.
func (s *Service) GetItem(ctx context.Context, instID id.InstitutionID, itemID id.ItemID) (_ *models.Item, err error) {
	ctx, done := s.begin(ctx, "get_item")
	defer done(&err)
	return loadItem(ctx, s.stores, instID, itemID)
}

// ListItems returns the institution's items, optionally filtered by kind.
func (s *Service) ListItems(ctx context.Context, instID id.InstitutionID, kinds ...models.ItemKind) (_ []*models.Item, err error) {
	ctx, done := s.begin(ctx, "list_items")
	defer done(&err)

	if _, err := s.GetInstitution(ctx, instID); err != nil {
		return nil, err
	}
	items, err := s.stores.Items.ListByInstitution(ctx, instID, kinds)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return items, nil
}

// InventoryValue sums quantity × unit price over inventory items.
func (s *Service) InventoryValue(ctx context.Context, instID id.InstitutionID) (_ token.Amount, err error) {
	ctx, done := s.begin(ctx, "inventory_value")
	defer done(&err)

	items, err := s.ListItems(ctx, instID, models.ItemKindInventory)
	if err != nil {
		return 0, err
	}
	total, err := models.InventoryValue(items)
	if err != nil {
		return 0, validationErr(err)
	}
	return total, nil
}

func loadItem(ctx context.Context, st Stores, instID id.InstitutionID, itemID id.ItemID) (*models.Item, error) {
	it, err := st.Items.FindByID(ctx, instID, itemID)
	if err != nil {
		return nil, translateStoreErr(err, "item not found", "failed to load item")
	}
	return it, nil
}

// requireAssignee checks that an optional assignee is a live member.
func requireAssignee(ctx context.Context, st Stores, instID id.InstitutionID, memberID *id.MemberID) error {
	if memberID == nil {
		return nil
	}
	if _, err := st.Members.FindByID(ctx, instID, *memberID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "assignee is not a member of this institution")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assignee")
	}
	return nil
}
