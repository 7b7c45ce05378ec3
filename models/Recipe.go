package models

import "time"

// Recipe is a named dish with an ordered ingredient list. ID is assigned by the store.
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Title       string             `gorm:"not null" json:"title"`
	Description string             `gorm:"type:text" json:"description"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	CreatedAt   time.Time          `json:"-"`
	UpdatedAt   time.Time          `json:"-"`
}

// IngredientCount reports how many ingredients the recipe lists.
func (r Recipe) IngredientCount() int {
	return len(r.Ingredients)
}

// Clone returns a deep copy so cached values can be handed out safely.
func (r Recipe) Clone() Recipe {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = make([]RecipeIngredient, len(r.Ingredients))
		for i, ingredient := range r.Ingredients {
			out.Ingredients[i] = ingredient.Clone()
		}
	}
	return out
}
