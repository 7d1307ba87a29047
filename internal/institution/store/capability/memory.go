package capability

import (
	"context"
	"sync"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

// InMemory keeps capabilities in a map. Safe for concurrent use.
type InMemory struct {
	mu           sync.RWMutex
	capabilities map[id.CapabilityID]*models.Capability
}

func NewInMemory() *InMemory {
	return &InMemory{capabilities: make(map[id.CapabilityID]*models.Capability)}
}

func (s *InMemory) Create(_ context.Context, c *models.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.capabilities[c.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *c
	s.capabilities[c.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, capID id.CapabilityID) (*models.Capability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.capabilities[capID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}
