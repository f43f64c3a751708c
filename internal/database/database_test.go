package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{
		"users", "ingredients", "inventory_items", "recipes", "recipe_ingredients",
		"user_health_goals", "meal_plans", "meal_plan_entries",
		"shopping_lists", "shopping_list_items", "push_subscriptions", "sent_notifications",
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpenFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "larder.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.db?"+pragmas, dsn("a.db"))
	assert.Equal(t, "file::memory:?mode=memory&"+pragmas, dsn("file::memory:?mode=memory"))
	assert.True(t, isMemory(":memory:"))
	assert.False(t, isMemory("larder.db"))
}
