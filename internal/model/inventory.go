package model

import "time"

type Location string

const (
	LocationFridge  Location = "fridge"
	LocationPantry  Location = "pantry"
	LocationFreezer Location = "freezer"
)

// Locations lists every storage location in display order.
var Locations = []Location{LocationFridge, LocationPantry, LocationFreezer}

func (l Location) Valid() bool {
	switch l {
	case LocationFridge, LocationPantry, LocationFreezer:
		return true
	}
	return false
}

type InventoryItem struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	IngredientID string     `json:"ingredient_id"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Location     Location   `json:"location"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	PurchasedAt  *time.Time `json:"purchased_at,omitempty"`
	IsFrozen     bool       `json:"is_frozen"`
	ThawAt       *time.Time `json:"thaw_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// InventoryPatch holds the fields an update may change. Nil means unchanged.
type InventoryPatch struct {
	Quantity  *float64
	Unit      *string
	Location  *Location
	ExpiresAt *time.Time
	IsFrozen  *bool
	ThawAt    *time.Time
}
