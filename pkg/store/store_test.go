package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/cbodonnell/landmark/pkg/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLandmarkStore(t *testing.T) {
	storetest.TestLandmarkStore(t, func(t *testing.T) store.LandmarkStore {
		return store.NewInMemoryLandmarkStore()
	})
}

func TestInMemoryDeathStore(t *testing.T) {
	storetest.TestDeathStore(t, func(t *testing.T) store.DeathStore {
		return store.NewInMemoryDeathStore()
	})
}

func TestInMemoryLandmarkStoreLazyUser(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryLandmarkStore()

	// Operations on a user without a session start never fault.
	_, err := s.Get(ctx, "ghost", "home")
	assert.True(t, store.IsNotFound(err))
	assert.Equal(t, 0, s.Users())

	err = s.Delete(ctx, "ghost", "home")
	assert.True(t, store.IsNotFound(err))
	assert.Equal(t, 1, s.Users())

	_, err = s.Add(ctx, "late", "home", kinematic.Vector{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Users())
}

func TestErrorHelpers(t *testing.T) {
	notFound := &store.ErrNotFound{Kind: store.KindLandmark, Key: "home"}
	assert.Equal(t, `landmark "home" not found`, notFound.Error())
	assert.True(t, store.IsNotFound(fmt.Errorf("failed to get: %w", notFound)))
	assert.False(t, store.IsNotFound(errors.New("boom")))

	invalid := store.ValidateName("")
	assert.True(t, store.IsInvalidArgument(invalid))
	assert.False(t, store.IsNotFound(invalid))
	assert.NoError(t, store.ValidateName("home"))
}
