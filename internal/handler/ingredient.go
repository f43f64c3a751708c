package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/larder/internal/catalog"
	"github.com/dukerupert/larder/internal/model"
)

type IngredientHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewIngredientHandler(c *catalog.Service, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{catalog: c, logger: logger}
}

// List handles GET /api/ingredients[?category=]
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		ingredients []model.Ingredient
		err         error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		ingredients, err = h.catalog.ListByCategory(r.Context(), category)
	} else {
		ingredients, err = h.catalog.ListAll(r.Context())
	}
	if err != nil {
		h.logger.Error("list ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list ingredients")
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// Search handles GET /api/ingredients/search?q=
func (h *IngredientHandler) Search(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("search ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search ingredients")
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// ByBarcode handles GET /api/ingredients/barcode/{barcode}
func (h *IngredientHandler) ByBarcode(w http.ResponseWriter, r *http.Request) {
	ing, err := h.catalog.FindByBarcode(r.Context(), r.PathValue("barcode"))
	if err != nil {
		h.logger.Error("find ingredient by barcode", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to find ingredient")
		return
	}
	if ing == nil {
		writeError(w, http.StatusNotFound, "ingredient not found")
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

type createIngredientRequest struct {
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Unit             string           `json:"unit"`
	NutritionPerUnit *model.Nutrition `json:"nutrition_per_unit"`
	Barcode          *string          `json:"barcode"`
}

// Create handles POST /api/ingredients
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ing, err := h.catalog.Create(r.Context(), catalog.CreateInput{
		Name:             req.Name,
		Category:         req.Category,
		Unit:             req.Unit,
		NutritionPerUnit: req.NutritionPerUnit,
		Barcode:          req.Barcode,
	})
	if err != nil {
		h.logger.Error("create ingredient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}

// Seed handles POST /api/ingredients/seed
func (h *IngredientHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Seed(r.Context())
	if err != nil {
		h.logger.Error("seed ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to seed ingredients")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": n})
}
