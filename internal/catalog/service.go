// Package catalog manages the shared ingredient catalog.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

// DefaultUnit is used when an ingredient is created without a unit.
const DefaultUnit = "piece"

//go:embed seed.yaml
var seedYAML string

type Service struct {
	ingredients *store.IngredientStore
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(ingredients *store.IngredientStore, logger *slog.Logger) *Service {
	return &Service{
		ingredients: ingredients,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) ListAll(ctx context.Context) ([]model.Ingredient, error) {
	return s.ingredients.ListAll(ctx)
}

// ListByCategory matches category exactly, including case.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]model.Ingredient, error) {
	return s.ingredients.ListByCategory(ctx, category)
}

// Search returns ingredients whose name contains term, ignoring case. An
// empty term matches everything.
func (s *Service) Search(ctx context.Context, term string) ([]model.Ingredient, error) {
	all, err := s.ingredients.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	if needle == "" {
		return all, nil
	}
	matches := []model.Ingredient{}
	for _, ing := range all {
		if strings.Contains(strings.ToLower(ing.Name), needle) {
			matches = append(matches, ing)
		}
	}
	return matches, nil
}

// FindByBarcode returns the first ingredient with the barcode, or nil.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*model.Ingredient, error) {
	return s.ingredients.GetByBarcode(ctx, barcode)
}

type CreateInput struct {
	Name             string
	Category         string
	Unit             string
	NutritionPerUnit *model.Nutrition
	Barcode          *string
}

// Create adds an ingredient. Duplicate names and barcodes are allowed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Ingredient, error) {
	ing := model.Ingredient{
		Name:             strings.TrimSpace(in.Name),
		Category:         in.Category,
		Unit:             in.Unit,
		NutritionPerUnit: in.NutritionPerUnit,
		Barcode:          in.Barcode,
	}
	if ing.Category == "" {
		ing.Category = Categorize(ing.Name)
	}
	if ing.Unit == "" {
		ing.Unit = DefaultUnit
	}
	return s.ingredients.Create(ctx, ing, s.now())
}

type seedFile struct {
	Ingredients []struct {
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Unit     string `yaml:"unit"`
	} `yaml:"ingredients"`
}

// ParseSeed decodes a YAML ingredient list.
func ParseSeed(r io.Reader) ([]model.Ingredient, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]model.Ingredient, 0, len(f.Ingredients))
	for i, e := range f.Ingredients {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("decode seed: entry %d has no name", i)
		}
		ing := model.Ingredient{Name: e.Name, Category: e.Category, Unit: e.Unit}
		if ing.Category == "" {
			ing.Category = Categorize(ing.Name)
		}
		if ing.Unit == "" {
			ing.Unit = DefaultUnit
		}
		out = append(out, ing)
	}
	return out, nil
}

// Seed loads the built-in starter catalog. See SeedFrom.
func (s *Service) Seed(ctx context.Context) (int, error) {
	return s.SeedFrom(ctx, strings.NewReader(seedYAML))
}

// SeedFrom bulk-loads the ingredients in r, but only into an empty catalog.
// When any ingredient already exists nothing is inserted and 0 is returned.
func (s *Service) SeedFrom(ctx context.Context, r io.Reader) (int, error) {
	ingredients, err := ParseSeed(r)
	if err != nil {
		return 0, err
	}

	count, err := s.ingredients.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("catalog already populated, skipping seed", "existing", count)
		return 0, nil
	}

	n, err := s.ingredients.BulkCreate(ctx, ingredients, s.now())
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	s.logger.Info("catalog seeded", "inserted", n)
	return n, nil
}
