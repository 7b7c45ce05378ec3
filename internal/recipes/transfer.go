package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"recetario/models"
)

// ExportFileName is the suggested name for downloaded exports.
const ExportFileName = "recetas.json"

// Export serializes the collection as an indented JSON array.
func Export(recipes []models.Recipe) ([]byte, error) {
	if len(recipes) == 0 {
		return nil, ErrNothingToExport
	}
	data, err := json.MarshalIndent(recipes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode recipes: %w", err)
	}
	return data, nil
}

type importRecipe struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Ingredients []importIngredient `json:"ingredients"`
}

type importIngredient struct {
	Name          string          `json:"name"`
	Specification json.RawMessage `json:"specification"`
	Unit          string          `json:"unit"`
}

// ParseImport decodes an export payload. Identifiers are dropped so every entry
// becomes a new record. Nothing is returned unless the whole payload is valid.
func ParseImport(data []byte) ([]models.Recipe, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidImport
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	recipes := make([]models.Recipe, 0, len(elements))
	for idx, element := range elements {
		element = bytes.TrimSpace(element)
		if len(element) == 0 || element[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidImport, idx+1)
		}

		var entry importRecipe
		if err := json.Unmarshal(element, &entry); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidImport, idx+1, err)
		}

		recipe := models.Recipe{
			Title:       entry.Title,
			Description: entry.Description,
			Ingredients: make([]models.RecipeIngredient, 0, len(entry.Ingredients)),
		}
		for pos, ingredient := range entry.Ingredients {
			specification, err := decodeSpecification(ingredient.Specification)
			if err != nil {
				return nil, fmt.Errorf("%w: element %d ingredient %d: %v", ErrInvalidImport, idx+1, pos+1, err)
			}
			recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
				Position:      pos,
				Name:          ingredient.Name,
				Specification: specification,
				Unit:          ingredient.Unit,
			})
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// decodeSpecification accepts a number, a numeric string, "" or null.
func decodeSpecification(raw json.RawMessage) (*float64, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil, nil
	}

	if strings.HasPrefix(text, `"`) {
		var quoted string
		if err := json.Unmarshal(raw, &quoted); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(quoted)
		if text == "" {
			return nil, nil
		}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("specification %s is not a number", string(raw))
	}
	return &value, nil
}
