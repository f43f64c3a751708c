package model

import "time"

type ShoppingList struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Name      string             `json:"name"`
	Items     []ShoppingListItem `json:"items,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type ShoppingListItem struct {
	ID           string      `json:"id"`
	ListID       string      `json:"list_id"`
	IngredientID string      `json:"ingredient_id"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	Quantity     float64     `json:"quantity"`
	Unit         string      `json:"unit"`
	IsPurchased  bool        `json:"is_purchased"`
	Notes        string      `json:"notes"`
	SortOrder    int         `json:"sort_order"`
	CreatedAt    time.Time   `json:"created_at"`
}
