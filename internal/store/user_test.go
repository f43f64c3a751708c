package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/model"
)

func TestUserCreateIfAbsent(t *testing.T) {
	us := NewUserStore(setupTestDB(t))
	ctx := context.Background()

	u, err := us.CreateIfAbsent(ctx, model.Identity{
		ExternalID: "auth0|alice",
		Email:      "alice@example.com",
		Name:       ptr("Alice"),
	}, testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "auth0|alice", u.ExternalID)
	assert.Equal(t, "alice@example.com", u.Email)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Alice", *u.Name)
	assert.Nil(t, u.AvatarURL)
	assert.True(t, u.CreatedAt.Equal(testNow))
	assert.True(t, u.UpdatedAt.Equal(testNow))
}

func TestUserCreateIfAbsentKeepsFirstWrite(t *testing.T) {
	us := NewUserStore(setupTestDB(t))
	ctx := context.Background()

	first, err := us.CreateIfAbsent(ctx, model.Identity{ExternalID: "x", Email: "first@example.com"}, testNow)
	require.NoError(t, err)

	second, err := us.CreateIfAbsent(ctx, model.Identity{ExternalID: "x", Email: "second@example.com"}, testNow.Add(1))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "first@example.com", second.Email)
}

func TestUserGetByExternalIDMissing(t *testing.T) {
	us := NewUserStore(setupTestDB(t))

	u, err := us.GetByExternalID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserGetByID(t *testing.T) {
	db := setupTestDB(t)
	created := createTestUser(t, db, "bob")

	u, err := NewUserStore(db).GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "bob@example.com", u.Email)
}
