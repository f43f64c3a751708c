package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/larder/internal/directory"
	"github.com/dukerupert/larder/internal/inventory"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/websocket"
)

type InventoryHandler struct {
	inventory *inventory.Service
	users     *directory.Service
	hub       Publisher
	logger    *slog.Logger
}

func NewInventoryHandler(inv *inventory.Service, users *directory.Service, hub Publisher, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inv, users: users, hub: hub, logger: logger}
}

// List handles GET /api/inventory[?location=]
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ext := identity(r).ExternalID

	var (
		items []inventory.Item
		err   error
	)
	if loc := r.URL.Query().Get("location"); loc != "" {
		if !model.Location(loc).Valid() {
			writeError(w, http.StatusBadRequest, "invalid location")
			return
		}
		items, err = h.inventory.ListByLocation(r.Context(), ext, model.Location(loc))
	} else {
		items, err = h.inventory.List(r.Context(), ext)
	}
	if err != nil {
		h.logger.Error("list inventory", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Expiring handles GET /api/inventory/expiring[?days=]
func (h *InventoryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = n
	}

	items, err := h.inventory.ListExpiring(r.Context(), identity(r).ExternalID, days)
	if err != nil {
		h.logger.Error("list expiring inventory", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list expiring items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Stats handles GET /api/inventory/stats
func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inventory.Stats(r.Context(), identity(r).ExternalID)
	if err != nil {
		h.logger.Error("inventory stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type addItemRequest struct {
	IngredientID string     `json:"ingredient_id"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Location     string     `json:"location"`
	ExpiresAt    *time.Time `json:"expires_at"`
	PurchasedAt  *time.Time `json:"purchased_at"`
	IsFrozen     bool       `json:"is_frozen"`
	ThawAt       *time.Time `json:"thaw_at"`
}

// Add handles POST /api/inventory. It answers 201 for a new row and 200
// when the quantity was merged into an existing one.
func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
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
	loc := model.Location(req.Location)
	if !loc.Valid() {
		writeError(w, http.StatusBadRequest, "invalid location")
		return
	}

	item, merged, err := h.inventory.Add(r.Context(), identity(r), inventory.AddInput{
		IngredientID: req.IngredientID,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Location:     loc,
		ExpiresAt:    req.ExpiresAt,
		PurchasedAt:  req.PurchasedAt,
		IsFrozen:     req.IsFrozen,
		ThawAt:       req.ThawAt,
	})
	if errors.Is(err, inventory.ErrUnknownIngredient) {
		writeError(w, http.StatusBadRequest, "unknown ingredient")
		return
	}
	if err != nil {
		h.logger.Error("add inventory item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	status, action := http.StatusCreated, "created"
	if merged {
		status, action = http.StatusOK, "updated"
	}
	publish(h.hub, item.UserID, websocket.EntityInventory, action, item.ID)
	writeJSON(w, status, item)
}

type updateItemRequest struct {
	Quantity  *float64   `json:"quantity"`
	Unit      *string    `json:"unit"`
	Location  *string    `json:"location"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsFrozen  *bool      `json:"is_frozen"`
	ThawAt    *time.Time `json:"thaw_at"`
}

func (req updateItemRequest) patch() (model.InventoryPatch, string) {
	p := model.InventoryPatch{
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		ExpiresAt: req.ExpiresAt,
		IsFrozen:  req.IsFrozen,
		ThawAt:    req.ThawAt,
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return p, "quantity must not be negative"
	}
	if req.Location != nil {
		loc := model.Location(*req.Location)
		if !loc.Valid() {
			return p, "invalid location"
		}
		p.Location = &loc
	}
	return p, ""
}

// Update handles PATCH /api/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	patch, problem := req.patch()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	id := r.PathValue("id")
	item, err := h.inventory.Update(r.Context(), identity(r).ExternalID, id, patch)
	if err != nil {
		h.writeInventoryError(w, "update inventory item", err)
		return
	}
	// Relocated into an occupied slot: the patched row was merged away.
	if item.ID != id {
		publish(h.hub, item.UserID, websocket.EntityInventory, "deleted", id)
	}
	publish(h.hub, item.UserID, websocket.EntityInventory, "updated", item.ID)
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ext := identity(r).ExternalID
	id := r.PathValue("id")
	if err := h.inventory.Delete(r.Context(), ext, id); err != nil {
		h.writeInventoryError(w, "delete inventory item", err)
		return
	}

	if user, err := h.users.Lookup(r.Context(), ext); err != nil {
		h.logger.Warn("resolve user for change feed", "error", err)
	} else if user != nil {
		publish(h.hub, user.ID, websocket.EntityInventory, "deleted", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) writeInventoryError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, inventory.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.logger.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
