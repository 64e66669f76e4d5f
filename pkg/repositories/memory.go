package repositories

import (
	"context"

	"github.com/cbodonnell/landmark/pkg/store"
)

var _ Repository = &MemoryRepository{}

// MemoryRepository keeps everything in process memory. Data is lost on restart.
type MemoryRepository struct {
	*store.InMemoryLandmarkStore
	*store.InMemoryDeathStore
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		InMemoryLandmarkStore: store.NewInMemoryLandmarkStore(),
		InMemoryDeathStore:    store.NewInMemoryDeathStore(),
	}
}

func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}
