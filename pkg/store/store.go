package store

import (
	"context"

	"github.com/cbodonnell/landmark/pkg/kinematic"
)

// LandmarkStore holds the named positions each user has saved.
// Implementations must be thread-safe. Every operation on a user that has no
// entry yet behaves as if the user had an empty set.
type LandmarkStore interface {
	// EnsureUser creates an empty landmark set for the user if none exists.
	EnsureUser(ctx context.Context, userID string) error
	// Add stores pos under name, replacing any previous value.
	// It reports whether an existing landmark was overwritten.
	Add(ctx context.Context, userID string, name string, pos kinematic.Vector) (bool, error)
	// Delete removes the named landmark.
	Delete(ctx context.Context, userID string, name string) error
	// Get returns the position stored under name.
	Get(ctx context.Context, userID string, name string) (kinematic.Vector, error)
	// List returns the user's landmark names in ascending order.
	// A user with no landmarks gets an empty slice and a nil error.
	List(ctx context.Context, userID string) ([]string, error)
	// Clear removes every landmark of the user.
	Clear(ctx context.Context, userID string) error
}

// DeathStore holds the most recent death position of each user.
// Implementations must be thread-safe.
type DeathStore interface {
	// RecordDeath overwrites the user's last death position.
	RecordDeath(ctx context.Context, userID string, pos kinematic.Vector) error
	// GetLastDeath returns the user's last death position.
	GetLastDeath(ctx context.Context, userID string) (kinematic.Vector, error)
}

// ValidateName returns an ErrInvalidArgument for names that cannot be stored.
func ValidateName(name string) error {
	if name == "" {
		return &ErrInvalidArgument{Reason: "landmark name must not be empty"}
	}
	return nil
}
