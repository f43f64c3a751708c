package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/model"
)

func TestIngredientSeedListAndSearch(t *testing.T) {
	e := setup(t)

	rec := e.do(t, alice, http.MethodPost, "/api/ingredients/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 47, decode[map[string]int](t, rec)["inserted"])

	rec = e.do(t, alice, http.MethodPost, "/api/ingredients/seed", nil)
	assert.Equal(t, 0, decode[map[string]int](t, rec)["inserted"])

	rec = e.do(t, alice, http.MethodGet, "/api/ingredients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Ingredient](t, rec), 47)

	rec = e.do(t, alice, http.MethodGet, "/api/ingredients?category=dairy", nil)
	for _, ing := range decode[[]model.Ingredient](t, rec) {
		assert.Equal(t, "dairy", ing.Category)
	}

	rec = e.do(t, alice, http.MethodGet, "/api/ingredients/search?q=TOMATO", nil)
	found := decode[[]model.Ingredient](t, rec)
	require.NotEmpty(t, found)
	assert.Contains(t, found[0].Name, "omato")

	rec = e.do(t, alice, http.MethodGet, "/api/ingredients/search?q=zzzz", nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestIngredientCreate(t *testing.T) {
	e := setup(t)

	rec := e.do(t, alice, http.MethodPost, "/api/ingredients", map[string]any{"name": "  Kale  ", "barcode": "123"})
	require.Equal(t, http.StatusCreated, rec.Code)
	ing := decode[model.Ingredient](t, rec)
	assert.Equal(t, "Kale", ing.Name)
	assert.Equal(t, "piece", ing.Unit)
	assert.NotEmpty(t, ing.Category)

	rec = e.do(t, alice, http.MethodGet, "/api/ingredients/barcode/123", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ing.ID, decode[model.Ingredient](t, rec).ID)

	rec = e.do(t, alice, http.MethodGet, "/api/ingredients/barcode/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, alice, http.MethodPost, "/api/ingredients", map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", errorOf(t, rec))

	rec = e.do(t, alice, http.MethodPost, "/api/ingredients", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
