//go:build integration

package capability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bursar/internal/institution/models"
	"bursar/internal/institution/store/capability"
	inststore "bursar/internal/institution/store/institution"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
	"bursar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *capability.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = capability.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "items", "fees", "members", "capabilities", "institution_owners", "institutions"))
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inst := &models.Institution{
		ID: id.NewInstitutionID(), Owner: "owner", Kind: models.InstitutionKindSchool,
		Name: "School", Location: "l", Contact: "c", Category: "k", CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(inststore.NewPostgres(s.postgres.DB).Create(ctx, inst))

	c := &models.Capability{ID: id.NewCapabilityID(), InstitutionID: inst.ID, SecretHash: "$2a$04$hash", CreatedAt: now}
	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(inst.ID, got.InstitutionID)
	s.Equal(c.SecretHash, got.SecretHash)

	_, err = s.store.FindByID(ctx, id.NewCapabilityID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
