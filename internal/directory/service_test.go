package directory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(store.NewUserStore(db))
}

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	name := "Alice"

	first, err := svc.CreateIfAbsent(ctx, model.Identity{ExternalID: "idp|1", Email: "alice@example.com", Name: &name})
	require.NoError(t, err)

	renamed := "Alice B."
	second, err := svc.CreateIfAbsent(ctx, model.Identity{ExternalID: "idp|1", Email: "alice@new.example.com", Name: &renamed})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alice@example.com", second.Email, "first write wins")
	assert.Equal(t, "Alice", *second.Name)
}

func TestCreateIfAbsentConcurrentFirstSight(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.CreateIfAbsent(ctx, model.Identity{ExternalID: "idp|race", Email: "r@example.com"})
			errs[i] = err
			if u != nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestCreateIfAbsentRequiresExternalID(t *testing.T) {
	svc := setupService(t)

	_, err := svc.CreateIfAbsent(context.Background(), model.Identity{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrMissingExternalID)
}

func TestLookup(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	missing, err := svc.Lookup(ctx, "idp|missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := svc.CreateIfAbsent(ctx, model.Identity{ExternalID: "idp|2", Email: "b@example.com"})
	require.NoError(t, err)

	got, err := svc.Lookup(ctx, "idp|2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}
