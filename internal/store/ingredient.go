package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/larder/internal/model"
)

type IngredientStore struct {
	db *sql.DB
}

func NewIngredientStore(db *sql.DB) *IngredientStore {
	return &IngredientStore{db: db}
}

func scanIngredient(s scanner) (*model.Ingredient, error) {
	var ing model.Ingredient
	var cal, protein, carbs, fat, fiber sql.NullFloat64
	var barcode sql.NullString
	err := s.Scan(&ing.ID, &ing.Name, &ing.Category, &ing.Unit,
		&cal, &protein, &carbs, &fat, &fiber, &barcode, &ing.CreatedAt)
	if err != nil {
		return nil, err
	}
	n := model.Nutrition{
		Calories: floatPtr(cal),
		Protein:  floatPtr(protein),
		Carbs:    floatPtr(carbs),
		Fat:      floatPtr(fat),
		Fiber:    floatPtr(fiber),
	}
	if !n.IsZero() {
		ing.NutritionPerUnit = &n
	}
	ing.Barcode = stringPtr(barcode)
	return &ing, nil
}

const ingredientCols = `id, name, category, unit, calories, protein, carbs, fat, fiber, barcode, created_at`

func selectIngredients() sq.SelectBuilder {
	return sq.Select(ingredientCols).From("ingredients").OrderBy("rowid ASC")
}

func (s *IngredientStore) list(ctx context.Context, b sq.SelectBuilder, op string) ([]model.Ingredient, error) {
	rows, err := query(ctx, s.db, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, *ing)
	}
	return ingredients, rows.Err()
}

// ListAll returns every ingredient in insertion order.
func (s *IngredientStore) ListAll(ctx context.Context) ([]model.Ingredient, error) {
	return s.list(ctx, selectIngredients(), "list ingredients")
}

func (s *IngredientStore) ListByCategory(ctx context.Context, category string) ([]model.Ingredient, error) {
	return s.list(ctx, selectIngredients().Where(sq.Eq{"category": category}), "list ingredients by category")
}

// GetByIDs returns the ingredients for ids keyed by id. Unknown ids are
// absent from the map.
func (s *IngredientStore) GetByIDs(ctx context.Context, ids []string) (map[string]model.Ingredient, error) {
	out := make(map[string]model.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.list(ctx, selectIngredients().Where(sq.Eq{"id": dedupe(ids)}), "get ingredients by ids")
	if err != nil {
		return nil, err
	}
	for _, ing := range list {
		out[ing.ID] = ing
	}
	return out, nil
}

func (s *IngredientStore) GetByID(ctx context.Context, id string) (*model.Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ingredientCols+` FROM ingredients WHERE id = ?`, id)
	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

// GetByBarcode returns the first ingredient carrying barcode.
func (s *IngredientStore) GetByBarcode(ctx context.Context, barcode string) (*model.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientCols+` FROM ingredients WHERE barcode = ? ORDER BY rowid ASC LIMIT 1`, barcode)
	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient by barcode: %w", err)
	}
	return ing, nil
}

func (s *IngredientStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ingredients: %w", err)
	}
	return n, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertIngredient(ctx context.Context, db execer, ing *model.Ingredient) error {
	var n model.Nutrition
	if ing.NutritionPerUnit != nil {
		n = *ing.NutritionPerUnit
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO ingredients (`+ingredientCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ing.ID, ing.Name, ing.Category, ing.Unit,
		nullFloat(n.Calories), nullFloat(n.Protein), nullFloat(n.Carbs), nullFloat(n.Fat), nullFloat(n.Fiber),
		nullString(ing.Barcode), ing.CreatedAt,
	)
	return err
}

// Create inserts ing, assigning its id and creation time.
func (s *IngredientStore) Create(ctx context.Context, ing model.Ingredient, now time.Time) (*model.Ingredient, error) {
	ing.ID = newID()
	ing.CreatedAt = now.UTC()
	if err := insertIngredient(ctx, s.db, &ing); err != nil {
		return nil, fmt.Errorf("insert ingredient: %w", err)
	}
	return &ing, nil
}

// BulkCreate inserts all ingredients in one transaction.
func (s *IngredientStore) BulkCreate(ctx context.Context, ingredients []model.Ingredient, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range ingredients {
		ing := ingredients[i]
		ing.ID = newID()
		ing.CreatedAt = now.UTC()
		if err := insertIngredient(ctx, tx, &ing); err != nil {
			return 0, fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return len(ingredients), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
