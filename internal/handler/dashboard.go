package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/larder/internal/directory"
	"github.com/dukerupert/larder/internal/inventory"
	"github.com/dukerupert/larder/internal/store"
)

type DashboardHandler struct {
	inventory *inventory.Service
	users     *directory.Service
	lists     *store.ShoppingListStore
	logger    *slog.Logger
}

func NewDashboardHandler(inv *inventory.Service, users *directory.Service, lists *store.ShoppingListStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{inventory: inv, users: users, lists: lists, logger: logger}
}

type dashboardResponse struct {
	Stats             inventory.Stats  `json:"stats"`
	Expiring          []inventory.Item `json:"expiring"`
	OpenShoppingItems int              `json:"open_shopping_items"`
}

// Get handles GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ext := identity(r).ExternalID
	user, err := h.users.Lookup(r.Context(), ext)
	if err != nil {
		h.logger.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	var resp dashboardResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		resp.Stats, err = h.inventory.Stats(ctx, ext)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Expiring, err = h.inventory.ListExpiring(ctx, ext, inventory.DefaultExpiringDays)
		return err
	})
	if user != nil {
		g.Go(func() error {
			var err error
			resp.OpenShoppingItems, err = h.lists.CountOpenItems(ctx, user.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	if resp.Expiring == nil {
		resp.Expiring = []inventory.Item{}
	}
	writeJSON(w, http.StatusOK, resp)
}
