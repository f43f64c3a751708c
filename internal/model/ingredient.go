package model

import "time"

type Nutrition struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
}

// IsZero reports whether no nutrition value is set.
func (n Nutrition) IsZero() bool {
	return n.Calories == nil && n.Protein == nil && n.Carbs == nil && n.Fat == nil && n.Fiber == nil
}

type Ingredient struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Unit             string     `json:"unit"`
	NutritionPerUnit *Nutrition `json:"nutrition_per_unit,omitempty"`
	Barcode          *string    `json:"barcode,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
