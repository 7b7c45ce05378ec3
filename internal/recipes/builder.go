package recipes

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"recetario/models"
)

// IngredientInput is one ingredient row exactly as typed into the form.
type IngredientInput struct {
	Name          string
	Specification string
	Unit          string
}

// Draft is the raw form state for a recipe.
type Draft struct {
	Title       string
	Description string
	Ingredients []IngredientInput
}

// EditPolicy controls validation on the edit path.
type EditPolicy struct {
	// RequireIngredients rejects edits whose ingredient rows are all blank.
	RequireIngredients bool
}

// Builder turns drafts into recipes ready for the store.
type Builder struct {
	candidateID func(ingredients int) uint
}

// NewBuilder returns a Builder whose provisional ids derive from the wall clock.
func NewBuilder() *Builder {
	return &Builder{candidateID: clockCandidateID}
}

// NewBuilderWithIDs returns a Builder using fn for provisional ids.
func NewBuilderWithIDs(fn func(ingredients int) uint) *Builder {
	if fn == nil {
		fn = clockCandidateID
	}
	return &Builder{candidateID: fn}
}

func clockCandidateID(ingredients int) uint {
	return uint(time.Now().UnixMilli()) + uint(rand.IntN(1000+ingredients))
}

// Build validates a new recipe. The returned ID is provisional; the store replaces it.
func (b *Builder) Build(draft Draft) (models.Recipe, error) {
	ingredients, err := filterIngredients(draft.Ingredients, storedValues{})
	if err != nil {
		return models.Recipe{}, err
	}
	if len(ingredients) == 0 {
		return models.Recipe{}, ErrNoValidIngredients
	}

	recipe, err := assemble(draft, ingredients)
	if err != nil {
		return models.Recipe{}, err
	}
	recipe.ID = b.candidateID(len(draft.Ingredients))
	return recipe, nil
}

// Rebuild validates an edit of the recipe identified by id. Units and
// quantities already present in stored are accepted as they are, so records
// brought in by an import stay editable.
func (b *Builder) Rebuild(id uint, draft Draft, policy EditPolicy, stored []models.RecipeIngredient) (models.Recipe, error) {
	if id == 0 {
		return models.Recipe{}, ErrMissingID
	}

	ingredients, err := filterIngredients(draft.Ingredients, storedValuesOf(stored))
	if err != nil {
		return models.Recipe{}, err
	}
	if len(ingredients) == 0 && policy.RequireIngredients {
		return models.Recipe{}, ErrNoValidIngredients
	}

	recipe, err := assemble(draft, ingredients)
	if err != nil {
		return models.Recipe{}, err
	}
	recipe.ID = id
	return recipe, nil
}

func assemble(draft Draft, ingredients []models.RecipeIngredient) (models.Recipe, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Recipe{}, &ValidationError{Field: "title", Index: -1, Err: ErrTitleRequired}
	}
	return models.Recipe{
		Title:       title,
		Description: draft.Description,
		Ingredients: ingredients,
	}, nil
}

// storedValues holds the units and quantities a recipe already carries.
type storedValues struct {
	units          map[string]bool
	specifications map[float64]bool
}

func storedValuesOf(ingredients []models.RecipeIngredient) storedValues {
	known := storedValues{units: map[string]bool{}, specifications: map[float64]bool{}}
	for _, ingredient := range ingredients {
		if unit := strings.TrimSpace(ingredient.Unit); unit != "" {
			known.units[unit] = true
		}
		if ingredient.Specification != nil {
			known.specifications[*ingredient.Specification] = true
		}
	}
	return known
}

// filterIngredients drops blank rows and parses the rest, keeping submission order.
func filterIngredients(inputs []IngredientInput, known storedValues) ([]models.RecipeIngredient, error) {
	result := make([]models.RecipeIngredient, 0, len(inputs))
	for idx, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			continue
		}

		specification, err := parseSpecification(input.Specification, known.specifications)
		if err != nil {
			return nil, &ValidationError{Field: "specification", Index: idx, Value: input.Specification, Err: err}
		}

		unit := models.NormalizeUnit(input.Unit)
		if unit != "" && !models.ValidUnit(unit) {
			raw := strings.TrimSpace(input.Unit)
			if !known.units[raw] {
				return nil, &ValidationError{Field: "unit", Index: idx, Value: input.Unit, Err: ErrUnknownUnit}
			}
			unit = raw
		}

		result = append(result, models.RecipeIngredient{
			Position:      len(result),
			Name:          name,
			Specification: specification,
			Unit:          unit,
		})
	}
	return result, nil
}

// parseSpecification requires a positive number unless the value is already stored.
func parseSpecification(raw string, known map[float64]bool) (*float64, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrInvalidSpecification
	}
	if value <= 0 && !known[value] {
		return nil, ErrInvalidSpecification
	}
	return &value, nil
}
