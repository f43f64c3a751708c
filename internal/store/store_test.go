package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, externalID string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).CreateIfAbsent(context.Background(), model.Identity{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
	}, testNow)
	require.NoError(t, err)
	return u
}

func createTestIngredient(t *testing.T, db *sql.DB, name, category, unit string) *model.Ingredient {
	t.Helper()
	ing, err := NewIngredientStore(db).Create(context.Background(), model.Ingredient{
		Name: name, Category: category, Unit: unit,
	}, testNow)
	require.NoError(t, err)
	return ing
}

func ptr[T any](v T) *T { return &v }
