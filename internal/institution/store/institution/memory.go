package institution

import (
	"context"
	"sync"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

// InMemory keeps institutions and the owner index in maps.
type InMemory struct {
	mu           sync.RWMutex
	institutions map[id.InstitutionID]*models.Institution
	owners       map[id.Principal]id.InstitutionID
}

func NewInMemory() *InMemory {
	return &InMemory{
		institutions: make(map[id.InstitutionID]*models.Institution),
		owners:       make(map[id.Principal]id.InstitutionID),
	}
}

// Create inserts an institution without claiming its owner exclusively.
func (s *InMemory) Create(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.institutions[inst.ID]; ok {
		return sentinel.ErrConflict
	}
	s.insertLocked(inst)
	return nil
}

// CreateIfOwnerAvailable inserts inst only if its owner has no institution yet.
func (s *InMemory) CreateIfOwnerAvailable(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.owners[inst.Owner]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.institutions[inst.ID]; ok {
		return sentinel.ErrConflict
	}
	s.insertLocked(inst)
	return nil
}

func (s *InMemory) insertLocked(inst *models.Institution) {
	clone := *inst
	s.institutions[inst.ID] = &clone
	if _, ok := s.owners[inst.Owner]; !ok {
		s.owners[inst.Owner] = inst.ID
	}
}

func (s *InMemory) FindByID(_ context.Context, instID id.InstitutionID) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.institutions[instID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *inst
	return &clone, nil
}

// FindByOwner returns the first institution created by owner.
func (s *InMemory) FindByOwner(_ context.Context, owner id.Principal) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instID, ok := s.owners[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.institutions[instID]
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.institutions[inst.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *inst
	s.institutions[inst.ID] = &clone
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.institutions), nil
}
