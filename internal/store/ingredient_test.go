package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/model"
)

func TestIngredientCreateAndGet(t *testing.T) {
	is := NewIngredientStore(setupTestDB(t))
	ctx := context.Background()

	created, err := is.Create(ctx, model.Ingredient{
		Name:             "Oat Milk",
		Category:         "dairy",
		Unit:             "L",
		Barcode:          ptr("0123456789"),
		NutritionPerUnit: &model.Nutrition{Calories: ptr(46.0), Fiber: ptr(0.8)},
	}, testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := is.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Oat Milk", got.Name)
	require.NotNil(t, got.NutritionPerUnit)
	assert.Equal(t, 46.0, *got.NutritionPerUnit.Calories)
	assert.Nil(t, got.NutritionPerUnit.Protein)
	assert.Equal(t, 0.8, *got.NutritionPerUnit.Fiber)
	require.NotNil(t, got.Barcode)
	assert.Equal(t, "0123456789", *got.Barcode)
}

func TestIngredientWithoutNutrition(t *testing.T) {
	db := setupTestDB(t)
	ing := createTestIngredient(t, db, "Salt", "pantry", "kg")

	got, err := NewIngredientStore(db).GetByID(context.Background(), ing.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NutritionPerUnit)
	assert.Nil(t, got.Barcode)
}

func TestIngredientListOrderAndCategory(t *testing.T) {
	db := setupTestDB(t)
	is := NewIngredientStore(db)
	ctx := context.Background()

	createTestIngredient(t, db, "Carrots", "vegetables", "kg")
	createTestIngredient(t, db, "Apples", "fruits", "kg")
	createTestIngredient(t, db, "Onions", "vegetables", "kg")

	all, err := is.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Carrots", "Apples", "Onions"}, names(all))

	veg, err := is.ListByCategory(ctx, "vegetables")
	require.NoError(t, err)
	assert.Equal(t, []string{"Carrots", "Onions"}, names(veg))

	none, err := is.ListByCategory(ctx, "Vegetables")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIngredientGetByBarcodeFirstMatch(t *testing.T) {
	is := NewIngredientStore(setupTestDB(t))
	ctx := context.Background()

	first, err := is.Create(ctx, model.Ingredient{Name: "A", Category: "x", Unit: "piece", Barcode: ptr("42")}, testNow)
	require.NoError(t, err)
	_, err = is.Create(ctx, model.Ingredient{Name: "B", Category: "x", Unit: "piece", Barcode: ptr("42")}, testNow)
	require.NoError(t, err)

	got, err := is.GetByBarcode(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := is.GetByBarcode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIngredientGetByIDs(t *testing.T) {
	db := setupTestDB(t)
	a := createTestIngredient(t, db, "A", "x", "kg")
	b := createTestIngredient(t, db, "B", "x", "kg")

	got, err := NewIngredientStore(db).GetByIDs(context.Background(), []string{a.ID, b.ID, a.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[a.ID].Name)
	assert.Equal(t, "B", got[b.ID].Name)

	empty, err := NewIngredientStore(db).GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIngredientBulkCreateAndCount(t *testing.T) {
	is := NewIngredientStore(setupTestDB(t))
	ctx := context.Background()

	n, err := is.BulkCreate(ctx, []model.Ingredient{
		{Name: "Rice", Category: "grains", Unit: "kg"},
		{Name: "Pasta", Category: "grains", Unit: "kg"},
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := is.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func names(ings []model.Ingredient) []string {
	out := make([]string, len(ings))
	for i, ing := range ings {
		out[i] = ing.Name
	}
	return out
}
