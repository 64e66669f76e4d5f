package store

import (
	"context"
	"sort"
	"sync"

	"github.com/cbodonnell/landmark/pkg/kinematic"
)

var _ LandmarkStore = &InMemoryLandmarkStore{}

// InMemoryLandmarkStore keeps every user's landmarks for the life of the process.
// Entries are never evicted, so landmarks survive a reconnect.
type InMemoryLandmarkStore struct {
	lock      sync.RWMutex
	landmarks map[string]map[string]kinematic.Vector
}

func NewInMemoryLandmarkStore() *InMemoryLandmarkStore {
	return &InMemoryLandmarkStore{
		landmarks: make(map[string]map[string]kinematic.Vector),
	}
}

func (s *InMemoryLandmarkStore) EnsureUser(ctx context.Context, userID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.userSet(userID)
	return nil
}

// userSet returns the landmark set of a user, creating it if needed.
// The write lock must be held.
func (s *InMemoryLandmarkStore) userSet(userID string) map[string]kinematic.Vector {
	set, ok := s.landmarks[userID]
	if !ok {
		set = make(map[string]kinematic.Vector)
		s.landmarks[userID] = set
	}
	return set
}

func (s *InMemoryLandmarkStore) Add(ctx context.Context, userID string, name string, pos kinematic.Vector) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	set := s.userSet(userID)
	_, exists := set[name]
	set[name] = pos
	return exists, nil
}

func (s *InMemoryLandmarkStore) Delete(ctx context.Context, userID string, name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	set := s.userSet(userID)
	if _, ok := set[name]; !ok {
		return &ErrNotFound{Kind: KindLandmark, Key: name}
	}
	delete(set, name)
	return nil
}

func (s *InMemoryLandmarkStore) Get(ctx context.Context, userID string, name string) (kinematic.Vector, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	pos, ok := s.landmarks[userID][name]
	if !ok {
		return kinematic.Vector{}, &ErrNotFound{Kind: KindLandmark, Key: name}
	}
	return pos, nil
}

func (s *InMemoryLandmarkStore) List(ctx context.Context, userID string) ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	set := s.landmarks[userID]
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *InMemoryLandmarkStore) Clear(ctx context.Context, userID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.landmarks[userID] = make(map[string]kinematic.Vector)
	return nil
}

// Users returns the number of users with a landmark set.
func (s *InMemoryLandmarkStore) Users() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.landmarks)
}
