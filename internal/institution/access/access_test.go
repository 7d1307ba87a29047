package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"bursar/internal/institution/models"
	"bursar/internal/institution/secrets"
	capstore "bursar/internal/institution/store/capability"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
)

type ControllerSuite struct {
	suite.Suite
	ctx        context.Context
	controller *Controller
	inst       *models.Institution
	member     *models.Member
	token      string
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	now := time.Now()
	store := capstore.NewInMemory()
	s.controller = NewController(store)

	s.inst = &models.Institution{ID: id.NewInstitutionID(), Owner: "owner", Kind: models.InstitutionKindSchool}
	s.member = &models.Member{ID: id.NewMemberID(), InstitutionID: s.inst.ID, Principal: "student"}

	secret, err := secrets.Generate()
	s.Require().NoError(err)
	hash, err := secrets.NewHasher(bcrypt.MinCost).Hash(secret)
	s.Require().NoError(err)
	capability, err := models.NewCapability(id.NewCapabilityID(), s.inst.ID, hash, now)
	s.Require().NoError(err)
	s.Require().NoError(store.Create(s.ctx, capability))
	s.token = models.FormatCapabilityToken(capability.ID, secret)
}

func (s *ControllerSuite) requireUnauthorized(err error) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "got %v", err)
}

func (s *ControllerSuite) TestAuthorize() {
	s.True(Authorize("a", "a"))
	s.False(Authorize("a", "b"))
	s.False(Authorize("", ""), "empty identities never match")
}

func (s *ControllerSuite) TestRequireCapability() {
	s.Run("accepts the minted token", func() {
		s.NoError(s.controller.RequireCapability(s.ctx, Credentials{Capability: s.token}, s.inst.ID))
	})

	s.Run("rejects a missing token", func() {
		s.requireUnauthorized(s.controller.RequireCapability(s.ctx, Credentials{Principal: "owner"}, s.inst.ID))
	})

	s.Run("rejects a token for another institution", func() {
		s.requireUnauthorized(s.controller.RequireCapability(s.ctx, Credentials{Capability: s.token}, id.NewInstitutionID()))
	})

	s.Run("rejects a wrong secret", func() {
		capID, _, err := models.ParseCapabilityToken(s.token)
		s.Require().NoError(err)
		forged := models.FormatCapabilityToken(capID, "guess")
		s.requireUnauthorized(s.controller.RequireCapability(s.ctx, Credentials{Capability: forged}, s.inst.ID))
	})

	s.Run("rejects an unknown capability id", func() {
		forged := models.FormatCapabilityToken(id.NewCapabilityID(), "guess")
		s.requireUnauthorized(s.controller.RequireCapability(s.ctx, Credentials{Capability: forged}, s.inst.ID))
	})

	s.Run("rejects garbage", func() {
		s.requireUnauthorized(s.controller.RequireCapability(s.ctx, Credentials{Capability: "garbage"}, s.inst.ID))
	})
}

func (s *ControllerSuite) TestRequireOwner() {
	s.NoError(s.controller.RequireOwner(s.ctx, Credentials{Principal: "owner"}, s.inst))
	s.NoError(s.controller.RequireOwner(s.ctx, Credentials{Principal: "someone", Capability: s.token}, s.inst))
	s.requireUnauthorized(s.controller.RequireOwner(s.ctx, Credentials{Principal: "student"}, s.inst))
}

func (s *ControllerSuite) TestRequireSelfOrOwner() {
	s.NoError(s.controller.RequireSelfOrOwner(s.ctx, Credentials{Principal: "student"}, s.inst, s.member))
	s.NoError(s.controller.RequireSelfOrOwner(s.ctx, Credentials{Principal: "owner"}, s.inst, s.member))
	s.NoError(s.controller.RequireSelfOrOwner(s.ctx, Credentials{Capability: s.token}, s.inst, s.member))
	s.requireUnauthorized(s.controller.RequireSelfOrOwner(s.ctx, Credentials{Principal: "stranger"}, s.inst, s.member))
	s.requireUnauthorized(s.controller.RequireSelfOrOwner(s.ctx, Credentials{}, s.inst, s.member))
}

func (s *ControllerSuite) TestRequirePrincipal() {
	s.NoError(s.controller.RequirePrincipal(Credentials{Principal: "student"}, "student"))
	s.requireUnauthorized(s.controller.RequirePrincipal(Credentials{Principal: "owner", Capability: s.token}, "student"))
}
