package item

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

// InMemory keeps items keyed by id.
type InMemory struct {
	mu    sync.RWMutex
	items map[id.ItemID]*models.Item
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[id.ItemID]*models.Item)}
}

func (s *InMemory) Create(_ context.Context, it *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[it.ID]; ok {
		return sentinel.ErrConflict
	}
	s.items[it.ID] = clone(it)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, instID id.InstitutionID, itemID id.ItemID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[itemID]
	if !ok || it.InstitutionID != instID {
		return nil, sentinel.ErrNotFound
	}
	return clone(it), nil
}

func (s *InMemory) ListByInstitution(_ context.Context, instID id.InstitutionID, kinds []models.ItemKind) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Item, 0)
	for _, it := range s.items {
		if it.InstitutionID != instID {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, it.Kind) {
			continue
		}
		out = append(out, clone(it))
	}
	slices.SortFunc(out, func(a, b *models.Item) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, it *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[it.ID]
	if !ok || existing.InstitutionID != it.InstitutionID {
		return sentinel.ErrNotFound
	}
	s.items[it.ID] = clone(it)
	return nil
}

func (s *InMemory) Delete(_ context.Context, instID id.InstitutionID, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.InstitutionID != instID {
		return sentinel.ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}

// UnassignMember clears every assignment to memberID and reports how many
// items changed.
func (s *InMemory) UnassignMember(_ context.Context, instID id.InstitutionID, memberID id.MemberID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		if it.InstitutionID == instID && it.AssigneeID != nil && *it.AssigneeID == memberID {
			it.Assign(nil, now)
			n++
		}
	}
	return n, nil
}

func clone(it *models.Item) *models.Item {
	c := *it
	if it.ScheduledAt != nil {
		at := *it.ScheduledAt
		c.ScheduledAt = &at
	}
	if it.AssigneeID != nil {
		m := *it.AssigneeID
		c.AssigneeID = &m
	}
	return &c
}
