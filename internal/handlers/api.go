package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	applog "recetario/internal/log"
	"recetario/internal/recipes"
	"recetario/models"
)

type ingredientPayload struct {
	Name          string          `json:"name"`
	Specification json.RawMessage `json:"specification"`
	Unit          string          `json:"unit"`
}

type recipePayload struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Ingredients []ingredientPayload `json:"ingredients"`
}

func (p recipePayload) draft() recipes.Draft {
	inputs := make([]recipes.IngredientInput, len(p.Ingredients))
	for i, ing := range p.Ingredients {
		inputs[i] = recipes.IngredientInput{
			Name:          ing.Name,
			Specification: specificationText(ing.Specification),
			Unit:          ing.Unit,
		}
	}
	return recipes.Draft{Title: p.Title, Description: p.Description, Ingredients: inputs}
}

// specificationText accepts JSON numbers and numeric strings.
func specificationText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return trimmed
}

// RecipeAPI serves the JSON API under /api/recipes.
func RecipeAPI(w http.ResponseWriter, r *http.Request) {
	if catalog == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipesJSON(w, r)
		case http.MethodPost:
			createRecipeJSON(w, r)
		default:
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	id, ok := parseID(path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "recipe not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		recipe, err := catalog.Recipe(r.Context(), id)
		if err != nil {
			writeJSONError(w, statusFor(err), userMessage(err))
			return
		}
		writeJSON(w, http.StatusOK, recipe)
	case http.MethodPut:
		updateRecipeJSON(w, r, id)
	case http.MethodDelete:
		if err := catalog.Remove(r.Context(), id); err != nil {
			applog.Error(r.Context(), "failed to delete recipe", "error", err, "id", id)
			writeJSONError(w, statusFor(err), userMessage(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func listRecipesJSON(w http.ResponseWriter, r *http.Request) {
	list, err := catalog.Recipes(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to list recipes", "error", err)
		writeJSONError(w, statusFor(err), userMessage(err))
		return
	}
	if list == nil {
		list = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, list)
}

func createRecipeJSON(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeRecipePayload(w, r)
	if !ok {
		return
	}
	created, err := catalog.Create(r.Context(), payload.draft())
	if err != nil {
		if !recipes.IsValidation(err) {
			applog.Error(r.Context(), "failed to create recipe", "error", err)
		}
		writeJSONError(w, statusFor(err), userMessage(err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func updateRecipeJSON(w http.ResponseWriter, r *http.Request, id uint) {
	payload, ok := decodeRecipePayload(w, r)
	if !ok {
		return
	}
	updated, err := catalog.Edit(r.Context(), id, payload.draft())
	if err != nil {
		if !recipes.IsValidation(err) {
			applog.Error(r.Context(), "failed to update recipe", "error", err, "id", id)
		}
		writeJSONError(w, statusFor(err), userMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func decodeRecipePayload(w http.ResponseWriter, r *http.Request) (recipePayload, bool) {
	var payload recipePayload
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return payload, false
		}
		applog.Debug(r.Context(), "invalid recipe payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return payload, false
	}
	return payload, true
}
