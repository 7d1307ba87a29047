package member

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

type principalKey struct {
	institution id.InstitutionID
	principal   id.Principal
}

// InMemory keeps members keyed by id with a per-institution principal index.
type InMemory struct {
	mu         sync.RWMutex
	members    map[id.MemberID]*models.Member
	principals map[principalKey]id.MemberID
}

func NewInMemory() *InMemory {
	return &InMemory{
		members:    make(map[id.MemberID]*models.Member),
		principals: make(map[principalKey]id.MemberID),
	}
}

// Create inserts m, failing with ErrAlreadyUsed when the institution already
// has a member with the same principal.
func (s *InMemory) Create(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := principalKey{m.InstitutionID, m.Principal}
	if _, taken := s.principals[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.members[m.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *m
	s.members[m.ID] = &clone
	s.principals[key] = m.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, instID id.InstitutionID, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok || m.InstitutionID != instID {
		return nil, sentinel.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

// ListByInstitution returns members in creation order, optionally filtered
// by kind.
func (s *InMemory) ListByInstitution(_ context.Context, instID id.InstitutionID, kinds []models.MemberKind) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Member, 0)
	for _, m := range s.members {
		if m.InstitutionID != instID {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, m.Kind) {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	slices.SortFunc(out, func(a, b *models.Member) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.members[m.ID]
	if !ok || existing.InstitutionID != m.InstitutionID {
		return sentinel.ErrNotFound
	}
	if existing.Principal != m.Principal {
		key := principalKey{m.InstitutionID, m.Principal}
		if _, taken := s.principals[key]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.principals, principalKey{existing.InstitutionID, existing.Principal})
		s.principals[key] = m.ID
	}
	clone := *m
	s.members[m.ID] = &clone
	return nil
}

func (s *InMemory) Delete(_ context.Context, instID id.InstitutionID, memberID id.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok || m.InstitutionID != instID {
		return sentinel.ErrNotFound
	}
	delete(s.members, memberID)
	delete(s.principals, principalKey{m.InstitutionID, m.Principal})
	return nil
}
