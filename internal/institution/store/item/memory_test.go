package item

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

type ItemStoreSuite struct {
	suite.Suite
	store  *InMemory
	ctx    context.Context
	instID id.InstitutionID
	now    time.Time
}

func (s *ItemStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.instID = id.NewInstitutionID()
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestItemStoreSuite(t *testing.T) {
	suite.Run(t, new(ItemStoreSuite))
}

func (s *ItemStoreSuite) newItem(kind models.ItemKind, assignee *id.MemberID) *models.Item {
	s.now = s.now.Add(time.Second)
	return &models.Item{
		ID:            id.NewItemID(),
		InstitutionID: s.instID,
		Kind:          kind,
		Name:          string(kind),
		Quantity:      2,
		UnitPrice:     10,
		AssigneeID:    assignee,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
}

func (s *ItemStoreSuite) TestCRUD() {
	it := s.newItem(models.ItemKindInventory, nil)
	s.Require().NoError(s.store.Create(s.ctx, it))

	it.Quantity = 5
	s.Require().NoError(s.store.Update(s.ctx, it))
	found, err := s.store.FindByID(s.ctx, s.instID, it.ID)
	s.Require().NoError(err)
	s.EqualValues(5, found.Quantity)

	s.Require().NoError(s.store.Delete(s.ctx, s.instID, it.ID))
	_, err = s.store.FindByID(s.ctx, s.instID, it.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ItemStoreSuite) TestReturnedItemsDoNotAliasStoredState() {
	memberID := id.NewMemberID()
	it := s.newItem(models.ItemKindRoom, &memberID)
	s.Require().NoError(s.store.Create(s.ctx, it))

	found, err := s.store.FindByID(s.ctx, s.instID, it.ID)
	s.Require().NoError(err)
	*found.AssigneeID = id.NewMemberID()

	again, err := s.store.FindByID(s.ctx, s.instID, it.ID)
	s.Require().NoError(err)
	s.Equal(memberID, *again.AssigneeID)
}

func (s *ItemStoreSuite) TestListAndUnassign() {
	memberID := id.NewMemberID()
	room := s.newItem(models.ItemKindRoom, &memberID)
	subject := s.newItem(models.ItemKindSubject, &memberID)
	stock := s.newItem(models.ItemKindInventory, nil)
	for _, it := range []*models.Item{room, subject, stock} {
		s.Require().NoError(s.store.Create(s.ctx, it))
	}

	inventory, err := s.store.ListByInstitution(s.ctx, s.instID, []models.ItemKind{models.ItemKindInventory})
	s.Require().NoError(err)
	s.Require().Len(inventory, 1)
	s.Equal(stock.ID, inventory[0].ID)

	n, err := s.store.UnassignMember(s.ctx, s.instID, memberID, s.now)
	s.Require().NoError(err)
	s.Equal(2, n)

	all, err := s.store.ListByInstitution(s.ctx, s.instID, nil)
	s.Require().NoError(err)
	for _, it := range all {
		s.Nil(it.AssigneeID)
	}
}
