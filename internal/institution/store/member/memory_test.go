package member

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

type MemberStoreSuite struct {
	suite.Suite
	store  *InMemory
	ctx    context.Context
	instID id.InstitutionID
	clock  time.Time
}

func (s *MemberStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.instID = id.NewInstitutionID()
	s.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestMemberStoreSuite(t *testing.T) {
	suite.Run(t, new(MemberStoreSuite))
}

func (s *MemberStoreSuite) newMember(principal id.Principal, kind models.MemberKind) *models.Member {
	s.clock = s.clock.Add(time.Second)
	return &models.Member{
		ID:            id.NewMemberID(),
		InstitutionID: s.instID,
		Kind:          kind,
		Principal:     principal,
		Name:          "Member " + string(principal),
		Gender:        models.GenderOther,
		Age:           30,
		Contact:       "c",
		Address:       "a",
		Status:        models.MemberStatusActive,
		CreatedAt:     s.clock,
		UpdatedAt:     s.clock,
	}
}

func (s *MemberStoreSuite) TestPrincipalUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newMember("p1", models.MemberKindStudent)))

	s.Run("same principal in the same institution is rejected", func() {
		err := s.store.Create(s.ctx, s.newMember("p1", models.MemberKindStaff))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("same principal in another institution is allowed", func() {
		m := s.newMember("p1", models.MemberKindStudent)
		m.InstitutionID = id.NewInstitutionID()
		s.NoError(s.store.Create(s.ctx, m))
	})

	s.Run("principal is released on delete", func() {
		m := s.newMember("p2", models.MemberKindStudent)
		s.Require().NoError(s.store.Create(s.ctx, m))
		s.Require().NoError(s.store.Delete(s.ctx, s.instID, m.ID))
		s.NoError(s.store.Create(s.ctx, s.newMember("p2", models.MemberKindStudent)))
	})
}

func (s *MemberStoreSuite) TestScopedLookups() {
	m := s.newMember("p1", models.MemberKindStudent)
	s.Require().NoError(s.store.Create(s.ctx, m))

	found, err := s.store.FindByID(s.ctx, s.instID, m.ID)
	s.Require().NoError(err)
	s.Equal(m.Name, found.Name)

	_, err = s.store.FindByID(s.ctx, id.NewInstitutionID(), m.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "member is invisible from another institution")

	s.ErrorIs(s.store.Delete(s.ctx, id.NewInstitutionID(), m.ID), sentinel.ErrNotFound)
}

func (s *MemberStoreSuite) TestListByInstitution() {
	a := s.newMember("a", models.MemberKindStudent)
	b := s.newMember("b", models.MemberKindLecturer)
	c := s.newMember("c", models.MemberKindStudent)
	for _, m := range []*models.Member{c, a, b} {
		s.Require().NoError(s.store.Create(s.ctx, m))
	}

	all, err := s.store.ListByInstitution(s.ctx, s.instID, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]id.MemberID{a.ID, b.ID, c.ID}, []id.MemberID{all[0].ID, all[1].ID, all[2].ID})

	students, err := s.store.ListByInstitution(s.ctx, s.instID, []models.MemberKind{models.MemberKindStudent})
	s.Require().NoError(err)
	s.Len(students, 2)

	none, err := s.store.ListByInstitution(s.ctx, id.NewInstitutionID(), nil)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *MemberStoreSuite) TestUpdate() {
	m := s.newMember("p1", models.MemberKindStudent)
	s.Require().NoError(s.store.Create(s.ctx, m))

	m.Paid = true
	m.Balance = 40
	s.Require().NoError(s.store.Update(s.ctx, m))

	found, err := s.store.FindByID(s.ctx, s.instID, m.ID)
	s.Require().NoError(err)
	s.True(found.Paid)
	s.EqualValues(40, found.Balance)

	s.ErrorIs(s.store.Update(s.ctx, s.newMember("ghost", models.MemberKindStudent)), sentinel.ErrNotFound)
}
