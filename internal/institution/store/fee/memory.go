package fee

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

// InMemory keeps unpaid fees keyed by id.
type InMemory struct {
	mu   sync.RWMutex
	fees map[id.FeeID]*models.Fee
}

func NewInMemory() *InMemory {
	return &InMemory{fees: make(map[id.FeeID]*models.Fee)}
}

func (s *InMemory) Create(_ context.Context, f *models.Fee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fees[f.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *f
	s.fees[f.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, instID id.InstitutionID, feeID id.FeeID) (*models.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fees[feeID]
	if !ok || f.InstitutionID != instID {
		return nil, sentinel.ErrNotFound
	}
	clone := *f
	return &clone, nil
}

// ListByInstitution returns fees ordered by due date, optionally for one member.
func (s *InMemory) ListByInstitution(_ context.Context, instID id.InstitutionID, memberID *id.MemberID) ([]*models.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Fee, 0)
	for _, f := range s.fees {
		if f.InstitutionID != instID {
			continue
		}
		if memberID != nil && f.MemberID != *memberID {
			continue
		}
		clone := *f
		out = append(out, &clone)
	}
	slices.SortFunc(out, func(a, b *models.Fee) int {
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) CountByMember(_ context.Context, instID id.InstitutionID, memberID id.MemberID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.fees {
		if f.InstitutionID == instID && f.MemberID == memberID {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) Delete(_ context.Context, instID id.InstitutionID, feeID id.FeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fees[feeID]
	if !ok || f.InstitutionID != instID {
		return sentinel.ErrNotFound
	}
	delete(s.fees, feeID)
	return nil
}
