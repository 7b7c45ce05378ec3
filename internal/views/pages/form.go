package pages

import (
	"slices"
	"strconv"

	"recetario/models"
)

// IngredientRow is one editable ingredient line.
type IngredientRow struct {
	Name          string
	Specification string
	Unit          string
}

// RecipeFormData feeds the create and edit forms.
type RecipeFormData struct {
	Heading     string
	Action      string
	Submit      string
	Error       string
	Title       string
	Description string
	Ingredients []IngredientRow
}

// BlankIngredientRow is the row offered for a new ingredient.
func BlankIngredientRow() IngredientRow {
	return IngredientRow{Specification: "1", Unit: models.DefaultUnit}
}

// NewRecipeForm returns the data for an empty create form.
func NewRecipeForm() RecipeFormData {
	return RecipeFormData{
		Heading:     "Añadir nueva receta",
		Action:      "/recipes",
		Submit:      "Añadir receta",
		Ingredients: []IngredientRow{BlankIngredientRow()},
	}
}

// EditRecipeForm prefills the form from a stored recipe.
func EditRecipeForm(recipe models.Recipe) RecipeFormData {
	rows := make([]IngredientRow, 0, len(recipe.Ingredients)+1)
	for _, ingredient := range recipe.Ingredients {
		rows = append(rows, IngredientRow{
			Name:          ingredient.Name,
			Specification: ingredient.SpecificationText(),
			Unit:          ingredient.Unit,
		})
	}
	rows = append(rows, BlankIngredientRow())

	return RecipeFormData{
		Heading:     "Editar receta",
		Action:      recipePath(recipe, ""),
		Submit:      "Guardar cambios",
		Title:       recipe.Title,
		Description: recipe.Description,
		Ingredients: rows,
	}
}

// unitOptions lists the selectable units. A stored unit outside the
// vocabulary is offered too so saving the form does not drop it.
func unitOptions(current string) []string {
	units := models.Units()
	if current == "" || slices.Contains(units, current) {
		return units
	}
	return append(units, current)
}

func ingredientPlaceholder(idx int) string {
	return "Ingrediente " + strconv.Itoa(idx+1)
}
