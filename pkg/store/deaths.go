package store

import (
	"context"
	"sync"

	"github.com/cbodonnell/landmark/pkg/kinematic"
)

var _ DeathStore = &InMemoryDeathStore{}

// InMemoryDeathStore keeps only the latest death position per user.
type InMemoryDeathStore struct {
	lock      sync.RWMutex
	positions map[string]kinematic.Vector
}

func NewInMemoryDeathStore() *InMemoryDeathStore {
	return &InMemoryDeathStore{
		positions: make(map[string]kinematic.Vector),
	}
}

func (s *InMemoryDeathStore) RecordDeath(ctx context.Context, userID string, pos kinematic.Vector) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.positions[userID] = pos
	return nil
}

func (s *InMemoryDeathStore) GetLastDeath(ctx context.Context, userID string) (kinematic.Vector, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	pos, ok := s.positions[userID]
	if !ok {
		return kinematic.Vector{}, &ErrNotFound{Kind: KindDeath, Key: userID}
	}
	return pos, nil
}
