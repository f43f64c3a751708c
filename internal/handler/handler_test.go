package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/catalog"
	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/directory"
	"github.com/dukerupert/larder/internal/inventory"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/websocket"
)

var (
	alice = model.Identity{ExternalID: "idp|alice", Email: "alice@example.com"}
	bob   = model.Identity{ExternalID: "idp|bob", Email: "bob@example.com"}
)

type published struct {
	userID string
	msg    websocket.Message
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(userID string, msg websocket.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{userID, msg})
}

func (p *recordingPublisher) last() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1]
}

type env struct {
	mux         *http.ServeMux
	hub         *recordingPublisher
	ingredients *store.IngredientStore
	users       *directory.Service
}

func setup(t *testing.T) env {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ingredients := store.NewIngredientStore(db)
	lists := store.NewShoppingListStore(db)
	users := directory.NewService(store.NewUserStore(db))
	inv := inventory.NewService(users, store.NewInventoryStore(db), ingredients)
	hub := &recordingPublisher{}

	ih := NewIngredientHandler(catalog.NewService(ingredients, logger), logger)
	uh := NewUserHandler(users, logger)
	invh := NewInventoryHandler(inv, users, hub, logger)
	dh := NewDashboardHandler(inv, users, lists, logger)
	sh := NewShoppingListHandler(lists, ingredients, users, hub, logger)
	ph := NewPushHandler(store.NewPushStore(db), "vapid-pub", users, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ingredients", ih.List)
	mux.HandleFunc("GET /api/ingredients/search", ih.Search)
	mux.HandleFunc("GET /api/ingredients/barcode/{barcode}", ih.ByBarcode)
	mux.HandleFunc("POST /api/ingredients", ih.Create)
	mux.HandleFunc("POST /api/ingredients/seed", ih.Seed)
	mux.HandleFunc("POST /api/users/sync", uh.Sync)
	mux.HandleFunc("GET /api/users/me", uh.Me)
	mux.HandleFunc("GET /api/inventory", invh.List)
	mux.HandleFunc("GET /api/inventory/expiring", invh.Expiring)
	mux.HandleFunc("GET /api/inventory/stats", invh.Stats)
	mux.HandleFunc("POST /api/inventory", invh.Add)
	mux.HandleFunc("PATCH /api/inventory/{id}", invh.Update)
	mux.HandleFunc("DELETE /api/inventory/{id}", invh.Delete)
	mux.HandleFunc("GET /api/dashboard", dh.Get)
	mux.HandleFunc("GET /api/shopping-lists", sh.List)
	mux.HandleFunc("POST /api/shopping-lists", sh.Create)
	mux.HandleFunc("GET /api/shopping-lists/{id}", sh.Get)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}", sh.Delete)
	mux.HandleFunc("POST /api/shopping-lists/{id}/items", sh.AddItem)
	mux.HandleFunc("POST /api/shopping-lists/{id}/items/{item_id}/purchase", sh.TogglePurchased)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}/items/{item_id}", sh.DeleteItem)
	mux.HandleFunc("POST /api/shopping-lists/{id}/clear-purchased", sh.ClearPurchased)
	mux.HandleFunc("GET /api/push/vapid-key", ph.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", ph.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", ph.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", ph.Unsubscribe)

	return env{mux: mux, hub: hub, ingredients: ingredients, users: users}
}

func (e env) do(t *testing.T, ident model.Identity, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req = req.WithContext(auth.WithIdentity(req.Context(), ident))
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e env) ingredient(t *testing.T, name, unit string) *model.Ingredient {
	t.Helper()
	ing, err := catalog.NewService(e.ingredients, slog.Default()).Create(t.Context(), catalog.CreateInput{Name: name, Unit: unit})
	require.NoError(t, err)
	return ing
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
