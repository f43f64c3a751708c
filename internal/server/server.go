package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/catalog"
	"github.com/dukerupert/larder/internal/config"
	"github.com/dukerupert/larder/internal/directory"
	"github.com/dukerupert/larder/internal/handler"
	"github.com/dukerupert/larder/internal/inventory"
	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/push"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

const (
	mutationLimit  = 120
	mutationWindow = time.Minute
	cleanupEvery   = 5 * time.Minute
)

type Server struct {
	hub           *ws.Hub
	verifier      middleware.TokenVerifier
	users         *directory.Service
	ingredientH   *handler.IngredientHandler
	userH         *handler.UserHandler
	inventoryH    *handler.InventoryHandler
	dashboardH    *handler.DashboardHandler
	shoppingListH *handler.ShoppingListHandler
	pushH         *handler.PushHandler
	rateLimiter   *middleware.RateLimiter
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg config.Config, verifier middleware.TokenVerifier, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	ingredientStore := store.NewIngredientStore(db)
	inventoryStore := store.NewInventoryStore(db)
	listStore := store.NewShoppingListStore(db)
	pushStore := store.NewPushStore(db)

	users := directory.NewService(userStore)
	catalogSvc := catalog.NewService(ingredientStore, logger.With("component", "catalog"))
	inventorySvc := inventory.NewService(users, inventoryStore, ingredientStore)

	// Push notifications are optional and need both VAPID keys.
	var pushH *handler.PushHandler
	var pushSched *push.Scheduler
	if cfg.Push.Enabled() {
		pushSvc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
		pushSched = push.NewScheduler(pushSvc, pushStore, inventoryStore, ingredientStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc.VAPIDPublicKey(), users, logger.With("component", "push_handler"))
	}

	return &Server{
		hub:           hub,
		verifier:      verifier,
		users:         users,
		ingredientH:   handler.NewIngredientHandler(catalogSvc, logger.With("component", "ingredient")),
		userH:         handler.NewUserHandler(users, logger.With("component", "user")),
		inventoryH:    handler.NewInventoryHandler(inventorySvc, users, hub, logger.With("component", "inventory")),
		dashboardH:    handler.NewDashboardHandler(inventorySvc, users, listStore, logger.With("component", "dashboard")),
		shoppingListH: handler.NewShoppingListHandler(listStore, ingredientStore, users, hub, logger.With("component", "shopping_list")),
		pushH:         pushH,
		rateLimiter:   middleware.NewRateLimiter(),
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// Hub returns the live change feed hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Start launches background work: rate limiter cleanup and, when push is
// configured, the expiry reminder scheduler. It stops when ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.rateLimiter.RunCleanup(ctx, cleanupEvery)
	if s.pushScheduler != nil {
		s.pushScheduler.Start(ctx)
	}
}

// Stop waits for the push scheduler to finish.
func (s *Server) Stop() {
	if s.pushScheduler != nil {
		s.pushScheduler.Stop()
	}
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireIdentity(s.verifier)(protectedMux))

	var h http.Handler = outerMux
	h = chimw.Recoverer(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return chimw.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// limited throttles mutations per caller.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.IdentityKey, mutationLimit, mutationWindow)(h)
}

func (s *Server) resolveUser(r *http.Request) (string, error) {
	ident, _ := auth.FromContext(r.Context())
	user, err := s.users.CreateIfAbsent(r.Context(), ident)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Ingredient catalog
	mux.HandleFunc("GET /api/ingredients", s.ingredientH.List)
	mux.HandleFunc("GET /api/ingredients/search", s.ingredientH.Search)
	mux.HandleFunc("GET /api/ingredients/barcode/{barcode}", s.ingredientH.ByBarcode)
	mux.Handle("POST /api/ingredients", s.limited(s.ingredientH.Create))
	mux.Handle("POST /api/ingredients/seed", s.limited(s.ingredientH.Seed))

	// Users
	mux.Handle("POST /api/users/sync", s.limited(s.userH.Sync))
	mux.HandleFunc("GET /api/users/me", s.userH.Me)

	// Inventory
	mux.HandleFunc("GET /api/inventory", s.inventoryH.List)
	mux.HandleFunc("GET /api/inventory/expiring", s.inventoryH.Expiring)
	mux.HandleFunc("GET /api/inventory/stats", s.inventoryH.Stats)
	mux.Handle("POST /api/inventory", s.limited(s.inventoryH.Add))
	mux.Handle("PATCH /api/inventory/{id}", s.limited(s.inventoryH.Update))
	mux.Handle("DELETE /api/inventory/{id}", s.limited(s.inventoryH.Delete))

	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Get)

	// Shopping lists
	mux.HandleFunc("GET /api/shopping-lists", s.shoppingListH.List)
	mux.Handle("POST /api/shopping-lists", s.limited(s.shoppingListH.Create))
	mux.HandleFunc("GET /api/shopping-lists/{id}", s.shoppingListH.Get)
	mux.Handle("DELETE /api/shopping-lists/{id}", s.limited(s.shoppingListH.Delete))
	mux.Handle("POST /api/shopping-lists/{id}/items", s.limited(s.shoppingListH.AddItem))
	mux.Handle("POST /api/shopping-lists/{id}/items/{item_id}/purchase", s.limited(s.shoppingListH.TogglePurchased))
	mux.Handle("DELETE /api/shopping-lists/{id}/items/{item_id}", s.limited(s.shoppingListH.DeleteItem))
	mux.Handle("POST /api/shopping-lists/{id}/clear-purchased", s.limited(s.shoppingListH.ClearPurchased))

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.Handle("POST /api/push/subscribe", s.limited(s.pushH.Subscribe))
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.Handle("DELETE /api/push/subscriptions/{id}", s.limited(s.pushH.Unsubscribe))
	}

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.resolveUser, s.logger.With("component", "websocket")))
}
