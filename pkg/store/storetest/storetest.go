// Package storetest holds behavioral tests shared by every store backend.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLandmarkStore runs the landmark store contract against a fresh store per subtest.
func TestLandmarkStore(t *testing.T, newStore func(t *testing.T) store.LandmarkStore) {
	ctx := context.Background()

	t.Run("get returns position captured at add", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		overwritten, err := s.Add(ctx, user, "home", kinematic.Vector{X: 100, Y: 200})
		require.NoError(t, err)
		assert.False(t, overwritten)

		got, err := s.Get(ctx, user, "home")
		require.NoError(t, err)
		assert.Equal(t, kinematic.Vector{X: 100, Y: 200}, got)
	})

	t.Run("second add overwrites and reports it", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		overwritten, err := s.Add(ctx, user, "mine", kinematic.Vector{X: 1, Y: 2})
		require.NoError(t, err)
		assert.False(t, overwritten)

		overwritten, err = s.Add(ctx, user, "mine", kinematic.Vector{X: -3.5, Y: 4.25})
		require.NoError(t, err)
		assert.True(t, overwritten)

		got, err := s.Get(ctx, user, "mine")
		require.NoError(t, err)
		assert.Equal(t, kinematic.Vector{X: -3.5, Y: 4.25}, got)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(ctx, uuid.NewString(), "", kinematic.Vector{})
		assert.True(t, store.IsInvalidArgument(err), "got %v", err)
	})

	t.Run("delete removes landmark", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		_, err := s.Add(ctx, user, "home", kinematic.Vector{X: 5, Y: 5})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, user, "home"))

		_, err = s.Get(ctx, user, "home")
		assert.True(t, store.IsNotFound(err), "got %v", err)
	})

	t.Run("delete of unknown name leaves set unchanged", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		_, err := s.Add(ctx, user, "keep", kinematic.Vector{X: 7, Y: 8})
		require.NoError(t, err)

		err = s.Delete(ctx, user, "missing")
		assert.True(t, store.IsNotFound(err), "got %v", err)

		names, err := s.List(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, names)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		_, err := s.Add(ctx, user, "Home", kinematic.Vector{X: 1, Y: 1})
		require.NoError(t, err)

		_, err = s.Get(ctx, user, "home")
		assert.True(t, store.IsNotFound(err), "got %v", err)
	})

	t.Run("clear empties the set and list reports empty", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		for _, name := range []string{"a", "b", "c"} {
			_, err := s.Add(ctx, user, name, kinematic.Vector{X: 1, Y: 1})
			require.NoError(t, err)
		}
		require.NoError(t, s.Clear(ctx, user))

		names, err := s.List(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("clear on unknown user succeeds", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Clear(ctx, uuid.NewString()))
	})

	t.Run("list is sorted", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		for _, name := range []string{"zoo", "apple", "mid"} {
			_, err := s.Add(ctx, user, name, kinematic.Vector{})
			require.NoError(t, err)
		}

		names, err := s.List(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"apple", "mid", "zoo"}, names)
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		alice, bob := uuid.NewString(), uuid.NewString()

		_, err := s.Add(ctx, alice, "home", kinematic.Vector{X: 1, Y: 2})
		require.NoError(t, err)

		_, err = s.Get(ctx, bob, "home")
		assert.True(t, store.IsNotFound(err), "got %v", err)

		require.NoError(t, s.Clear(ctx, bob))
		_, err = s.Get(ctx, alice, "home")
		assert.NoError(t, err)
	})

	t.Run("ensure user is idempotent and keeps landmarks", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		require.NoError(t, s.EnsureUser(ctx, user))
		names, err := s.List(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, names)

		_, err = s.Add(ctx, user, "home", kinematic.Vector{X: 3, Y: 4})
		require.NoError(t, err)
		require.NoError(t, s.EnsureUser(ctx, user))

		got, err := s.Get(ctx, user, "home")
		require.NoError(t, err)
		assert.Equal(t, kinematic.Vector{X: 3, Y: 4}, got)
	})

	t.Run("concurrent adds are not lost", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		const workers = 8
		const perWorker = 25
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					name := fmt.Sprintf("w%d-%d", w, i)
					if _, err := s.Add(ctx, user, name, kinematic.Vector{X: float64(w), Y: float64(i)}); err != nil {
						t.Errorf("add %s: %v", name, err)
					}
				}
			}(w)
		}
		wg.Wait()

		names, err := s.List(ctx, user)
		require.NoError(t, err)
		assert.Len(t, names, workers*perWorker)
	})
}

// TestDeathStore runs the death store contract against a fresh store per subtest.
func TestDeathStore(t *testing.T, newStore func(t *testing.T) store.DeathStore) {
	ctx := context.Background()

	t.Run("no death recorded", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetLastDeath(ctx, uuid.NewString())
		assert.True(t, store.IsNotFound(err), "got %v", err)
	})

	t.Run("latest death wins", func(t *testing.T) {
		s := newStore(t)
		user := uuid.NewString()

		require.NoError(t, s.RecordDeath(ctx, user, kinematic.Vector{X: 1, Y: 1}))
		require.NoError(t, s.RecordDeath(ctx, user, kinematic.Vector{X: 50, Y: 75}))

		got, err := s.GetLastDeath(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, kinematic.Vector{X: 50, Y: 75}, got)
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		alice, bob := uuid.NewString(), uuid.NewString()

		require.NoError(t, s.RecordDeath(ctx, alice, kinematic.Vector{X: 9, Y: 9}))

		_, err := s.GetLastDeath(ctx, bob)
		assert.True(t, store.IsNotFound(err), "got %v", err)
	})
}
