// Package inventory tracks what each user has in the fridge, pantry and freezer.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/larder/internal/directory"
	"github.com/dukerupert/larder/internal/expiry"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrNotOwner          = errors.New("inventory item belongs to another user")
	ErrUnknownIngredient = errors.New("unknown ingredient")
)

// DefaultExpiringDays is the window used when ListExpiring is given none.
const DefaultExpiringDays = expiry.SoonDays

// Item is an inventory row joined with its ingredient and expiry status.
type Item struct {
	model.InventoryItem
	Ingredient      *model.Ingredient `json:"ingredient"`
	ExpiryStatus    expiry.Status     `json:"expiry_status"`
	DaysUntilExpiry *int              `json:"days_until_expiry"`
}

type LocationCounts struct {
	Fridge  int `json:"fridge"`
	Pantry  int `json:"pantry"`
	Freezer int `json:"freezer"`
}

type Stats struct {
	TotalItems       int            `json:"total_items"`
	ExpiringSoon     int            `json:"expiring_soon"`
	ExpiringThisWeek int            `json:"expiring_this_week"`
	ByLocation       LocationCounts `json:"by_location"`
}

type Service struct {
	users       *directory.Service
	items       *store.InventoryStore
	ingredients *store.IngredientStore
	now         func() time.Time
}

type Option func(*Service)

// WithNow replaces the clock used for expiry math and timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users *directory.Service, items *store.InventoryStore, ingredients *store.IngredientStore, opts ...Option) *Service {
	s := &Service{
		users:       users,
		items:       items,
		ingredients: ingredients,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// userID resolves externalID to an internal id. An unknown user yields "".
func (s *Service) userID(ctx context.Context, externalID string) (string, error) {
	u, err := s.users.Lookup(ctx, externalID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.ID, nil
}

// List returns all of the user's items, soonest expiry first.
func (s *Service) List(ctx context.Context, externalID string) ([]Item, error) {
	uid, err := s.userID(ctx, externalID)
	if err != nil || uid == "" {
		return []Item{}, err
	}
	rows, err := s.items.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, rows)
}

func (s *Service) ListByLocation(ctx context.Context, externalID string, loc model.Location) ([]Item, error) {
	uid, err := s.userID(ctx, externalID)
	if err != nil || uid == "" {
		return []Item{}, err
	}
	rows, err := s.items.ListByUserLocation(ctx, uid, loc)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, rows)
}

// ListExpiring returns dated items expiring within days from now, including
// those already expired. days <= 0 uses DefaultExpiringDays.
func (s *Service) ListExpiring(ctx context.Context, externalID string, days int) ([]Item, error) {
	if days <= 0 {
		days = DefaultExpiringDays
	}
	uid, err := s.userID(ctx, externalID)
	if err != nil || uid == "" {
		return []Item{}, err
	}
	rows, err := s.items.ListExpiringBefore(ctx, uid, expiry.Cutoff(s.now(), days))
	if err != nil {
		return nil, err
	}
	return s.join(ctx, rows)
}

// Stats counts the user's items. The expiring buckets are cumulative, so
// ExpiringThisWeek includes everything in ExpiringSoon.
func (s *Service) Stats(ctx context.Context, externalID string) (Stats, error) {
	var st Stats
	uid, err := s.userID(ctx, externalID)
	if err != nil || uid == "" {
		return st, err
	}
	rows, err := s.items.ListByUser(ctx, uid)
	if err != nil {
		return st, err
	}

	now := s.now()
	st.TotalItems = len(rows)
	for _, r := range rows {
		if expiry.Within(r.ExpiresAt, now, expiry.SoonDays) {
			st.ExpiringSoon++
		}
		if expiry.Within(r.ExpiresAt, now, expiry.WeekDays) {
			st.ExpiringThisWeek++
		}
		switch r.Location {
		case model.LocationFridge:
			st.ByLocation.Fridge++
		case model.LocationPantry:
			st.ByLocation.Pantry++
		case model.LocationFreezer:
			st.ByLocation.Freezer++
		}
	}
	return st, nil
}

type AddInput struct {
	IngredientID string
	Quantity     float64
	Unit         string
	Location     model.Location
	ExpiresAt    *time.Time
	PurchasedAt  *time.Time
	IsFrozen     bool
	ThawAt       *time.Time
}

// Add stores a new item for the caller, creating their user record if
// needed. Adding an ingredient already held at the same location increases
// that row's quantity and otherwise leaves it unchanged. The bool reports
// whether a merge happened.
func (s *Service) Add(ctx context.Context, ident model.Identity, in AddInput) (*Item, bool, error) {
	user, err := s.users.CreateIfAbsent(ctx, ident)
	if err != nil {
		return nil, false, err
	}
	ing, err := s.ingredients.GetByID(ctx, in.IngredientID)
	if err != nil {
		return nil, false, err
	}
	if ing == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownIngredient, in.IngredientID)
	}

	now := s.now()
	unit := in.Unit
	if unit == "" {
		unit = ing.Unit
	}
	purchased := in.PurchasedAt
	if purchased == nil {
		purchased = &now
	}

	row, merged, err := s.items.Upsert(ctx, model.InventoryItem{
		UserID:       user.ID,
		IngredientID: in.IngredientID,
		Quantity:     in.Quantity,
		Unit:         unit,
		Location:     in.Location,
		ExpiresAt:    in.ExpiresAt,
		PurchasedAt:  purchased,
		IsFrozen:     in.IsFrozen,
		ThawAt:       in.ThawAt,
	}, now)
	if err != nil {
		return nil, false, err
	}
	item := newItem(*row, ing, now)
	return &item, merged, nil
}

// Update applies patch to an item the caller owns. Moving the item to a
// location that already holds the same ingredient merges it there, and the
// returned item is the surviving row, which has a different id.
func (s *Service) Update(ctx context.Context, externalID, itemID string, patch model.InventoryPatch) (*Item, error) {
	if _, err := s.owned(ctx, externalID, itemID); err != nil {
		return nil, err
	}
	row, err := s.items.Patch(ctx, itemID, patch, s.now())
	if errors.Is(err, store.ErrNotFound) || (err == nil && row == nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	items, err := s.join(ctx, []model.InventoryItem{*row})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Delete removes an item the caller owns.
func (s *Service) Delete(ctx context.Context, externalID, itemID string) error {
	if _, err := s.owned(ctx, externalID, itemID); err != nil {
		return err
	}
	err := s.items.Delete(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) owned(ctx context.Context, externalID, itemID string) (*model.InventoryItem, error) {
	row, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	uid, err := s.userID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if uid == "" || row.UserID != uid {
		return nil, ErrNotOwner
	}
	return row, nil
}

// join attaches ingredients in one batched lookup and sorts by expiry.
func (s *Service) join(ctx context.Context, rows []model.InventoryItem) ([]Item, error) {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.IngredientID
	}
	ingredients, err := s.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]Item, len(rows))
	for i, r := range rows {
		var ing *model.Ingredient
		if found, ok := ingredients[r.IngredientID]; ok {
			ing = &found
		}
		items[i] = newItem(r, ing, now)
	}
	expiry.Sort(items, func(it Item) *time.Time { return it.ExpiresAt })
	return items, nil
}

func newItem(row model.InventoryItem, ing *model.Ingredient, now time.Time) Item {
	status, days := expiry.ComputeStatus(row.ExpiresAt, now)
	return Item{
		InventoryItem:   row,
		Ingredient:      ing,
		ExpiryStatus:    status,
		DaysUntilExpiry: days,
	}
}
