package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/larder/internal/directory"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

type ShoppingListHandler struct {
	lists       *store.ShoppingListStore
	ingredients *store.IngredientStore
	users       *directory.Service
	hub         Publisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewShoppingListHandler(ls *store.ShoppingListStore, is *store.IngredientStore, users *directory.Service, hub Publisher, logger *slog.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{lists: ls, ingredients: is, users: users, hub: hub, logger: logger, now: time.Now}
}

// List handles GET /api/shopping-lists
func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Lookup(r.Context(), identity(r).ExternalID)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shopping lists")
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, []model.ShoppingList{})
		return
	}

	lists, err := h.lists.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list shopping lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shopping lists")
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

type createListRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/shopping-lists
func (h *ShoppingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.users.CreateIfAbsent(r.Context(), identity(r))
	if err != nil {
		h.logger.Error("sync user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create shopping list")
		return
	}
	list, err := h.lists.CreateList(r.Context(), user.ID, req.Name, h.now())
	if err != nil {
		h.logger.Error("create shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create shopping list")
		return
	}
	publish(h.hub, user.ID, websocket.EntityShoppingList, "created", list.ID)
	writeJSON(w, http.StatusCreated, list)
}

// Get handles GET /api/shopping-lists/{id}. Items come back joined with
// their ingredients, open items first.
func (h *ShoppingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return
	}

	items, err := h.lists.ListItems(r.Context(), list.ID)
	if err != nil {
		h.logger.Error("list shopping list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.IngredientID
	}
	ingredients, err := h.ingredients.GetByIDs(r.Context(), ids)
	if err != nil {
		h.logger.Error("join ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return
	}
	for i := range items {
		if ing, ok := ingredients[items[i].IngredientID]; ok {
			items[i].Ingredient = &ing
		}
	}
	list.Items = items
	writeJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /api/shopping-lists/{id}
func (h *ShoppingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return
	}
	if err := h.lists.DeleteList(r.Context(), list.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("delete shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete shopping list")
		return
	}
	publish(h.hub, list.UserID, websocket.EntityShoppingList, "deleted", list.ID)
	w.WriteHeader(http.StatusNoContent)
}

type addListItemRequest struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Notes        string  `json:"notes"`
}

// AddItem handles POST /api/shopping-lists/{id}/items
func (h *ShoppingListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return
	}

	var req addListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.IngredientID == "" {
		writeError(w, http.StatusBadRequest, "ingredient_id is required")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ing, err := h.ingredients.GetByID(r.Context(), req.IngredientID)
	if err != nil {
		h.logger.Error("get ingredient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	if ing == nil {
		writeError(w, http.StatusBadRequest, "unknown ingredient")
		return
	}
	if req.Unit == "" {
		req.Unit = ing.Unit
	}

	item, err := h.lists.AddItem(r.Context(), model.ShoppingListItem{
		ListID:       list.ID,
		IngredientID: ing.ID,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Notes:        strings.TrimSpace(req.Notes),
	}, h.now())
	if err != nil {
		h.logger.Error("add shopping list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	item.Ingredient = ing
	publish(h.hub, list.UserID, websocket.EntityListItem, "created", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

// TogglePurchased handles POST /api/shopping-lists/{id}/items/{item_id}/purchase
func (h *ShoppingListHandler) TogglePurchased(w http.ResponseWriter, r *http.Request) {
	list, item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	updated, err := h.lists.TogglePurchased(r.Context(), item.ID, h.now())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.logger.Error("toggle purchased", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	publish(h.hub, list.UserID, websocket.EntityListItem, "updated", item.ID)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/shopping-lists/{id}/items/{item_id}
func (h *ShoppingListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	list, item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if err := h.lists.DeleteItem(r.Context(), item.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("delete shopping list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	publish(h.hub, list.UserID, websocket.EntityListItem, "deleted", item.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ClearPurchased handles POST /api/shopping-lists/{id}/clear-purchased
func (h *ShoppingListHandler) ClearPurchased(w http.ResponseWriter, r *http.Request) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return
	}
	n, err := h.lists.ClearPurchased(r.Context(), list.ID)
	if err != nil {
		h.logger.Error("clear purchased", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear purchased items")
		return
	}
	publish(h.hub, list.UserID, websocket.EntityShoppingList, "updated", list.ID)
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": n})
}

// ownedList loads the {id} list and checks it belongs to the caller. On
// failure the response has been written.
func (h *ShoppingListHandler) ownedList(w http.ResponseWriter, r *http.Request) (*model.ShoppingList, bool) {
	list, err := h.lists.GetList(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return nil, false
	}

	user, err := h.users.Lookup(r.Context(), identity(r).ExternalID)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if user == nil || user.ID != list.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil, false
	}
	return list, true
}

func (h *ShoppingListHandler) ownedItem(w http.ResponseWriter, r *http.Request) (*model.ShoppingList, *model.ShoppingListItem, bool) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return nil, nil, false
	}
	item, err := h.lists.GetItem(r.Context(), r.PathValue("item_id"))
	if err != nil {
		h.logger.Error("get shopping list item", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, nil, false
	}
	if item == nil || item.ListID != list.ID {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, nil, false
	}
	return list, item, true
}
