package pages

import (
	"fmt"
	"strconv"
	"strings"

	"recetario/models"
)

const appTitle = "Gestor de Recetas"

// RecipeListData feeds the collection view.
type RecipeListData struct {
	Recipes []models.Recipe
	Notice  string
	Error   string
}

// IngredientCountLabel returns e.g. "3 ingredientes".
func IngredientCountLabel(count int) string {
	if count == 1 {
		return "1 ingrediente"
	}
	return fmt.Sprintf("%d ingredientes", count)
}

// DeleteConfirmation is the prompt shown before deleting a recipe.
func DeleteConfirmation(title string) string {
	return fmt.Sprintf("¿Borrar la receta «%s»?", strings.TrimSpace(title))
}

func recipeID(recipe models.Recipe) string {
	return strconv.FormatUint(uint64(recipe.ID), 10)
}

func recipePath(recipe models.Recipe, suffix string) string {
	return "/recipes/" + recipeID(recipe) + suffix
}
