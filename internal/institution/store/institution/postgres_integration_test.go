//go:build integration

package institution_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bursar/internal/institution/models"
	"bursar/internal/institution/store/institution"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
	"bursar/pkg/testutil/containers"
	"bursar/pkg/token"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *institution.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = institution.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "items", "fees", "members", "capabilities", "institution_owners", "institutions")
	s.Require().NoError(err)
}

func newTestInstitution(owner string) *models.Institution {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Institution{
		ID:        id.NewInstitutionID(),
		Owner:     id.Principal(owner),
		Kind:      models.InstitutionKindSchool,
		Name:      "Riverside School",
		Location:  "12 River Rd",
		Contact:   "office@example.test",
		Category:  "secondary",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestConcurrentOwnerClaim verifies that concurrent creations for one owner
// leave exactly one institution indexed for it.
func (s *PostgresStoreSuite) TestConcurrentOwnerClaim() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var created, conflicts atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfOwnerAvailable(ctx, newTestInstitution("contested"))
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, n, "a rejected claim must not leave an institution row behind")
}

func (s *PostgresStoreSuite) TestCreateKeepsFirstOwnerEntry() {
	ctx := context.Background()
	first := newTestInstitution("chain")
	second := newTestInstitution("chain")
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	byOwner, err := s.store.FindByOwner(ctx, "chain")
	s.Require().NoError(err)
	s.Equal(first.ID, byOwner.ID)

	got, err := s.store.FindByID(ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(second.ID, got.ID)
}

func (s *PostgresStoreSuite) TestBalanceBeyondInt64RoundTrips() {
	ctx := context.Background()
	inst := newTestInstitution("rich")
	s.Require().NoError(s.store.Create(ctx, inst))

	inst.Balance = token.MaxAmount
	inst.Name = "Renamed"
	s.Require().NoError(s.store.Update(ctx, inst))

	got, err := s.store.FindByID(ctx, inst.ID)
	s.Require().NoError(err)
	s.Equal(token.MaxAmount, got.Balance)
	s.Equal("Renamed", got.Name)
	s.Equal(inst.CreatedAt, got.CreatedAt.UTC())
}

func (s *PostgresStoreSuite) TestNotFound() {
	ctx := context.Background()
	_, err := s.store.FindByID(ctx, id.NewInstitutionID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByOwner(ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Update(ctx, newTestInstitution("ghost"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
