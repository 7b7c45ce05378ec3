package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"recetario/models"
)

func TestExportRejectsEmptyCollection(t *testing.T) {
	t.Parallel()

	if _, err := Export(nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Export(nil) error = %v, want ErrNothingToExport", err)
	}
}

func TestExportIsIndentedJSONArray(t *testing.T) {
	t.Parallel()

	data, err := Export([]models.Recipe{{ID: 3, Title: "Sopa", Ingredients: []models.RecipeIngredient{{Name: "Agua", Specification: floatPtr(1), Unit: "l"}}}})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "[\n  {") {
		t.Fatalf("expected two-space indented array, got %q", text)
	}
	for _, token := range []string{`"id": 3`, `"title": "Sopa"`, `"name": "Agua"`, `"specification": 1`, `"unit": "l"`} {
		if !strings.Contains(text, token) {
			t.Fatalf("expected export to contain %s: %s", token, text)
		}
	}
	for _, hidden := range []string{"recipe_id", "position", "created_at", "CreatedAt"} {
		if strings.Contains(text, hidden) {
			t.Fatalf("export leaked storage field %q: %s", hidden, text)
		}
	}
}

func TestParseImportRejectsMalformedPayloads(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":          "",
		"object":         `{"title":"Sopa"}`,
		"not json":       `[{"title":`,
		"scalar element": `[1, 2]`,
		"bad quantity":   `[{"title":"Sopa","ingredients":[{"name":"Agua","specification":"mucho"}]}]`,
		"wrong types":    `[{"title":5}]`,
	}

	for name, payload := range cases {
		name, payload := name, payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			recipes, err := ParseImport([]byte(payload))
			if !errors.Is(err, ErrInvalidImport) {
				t.Fatalf("ParseImport(%q) error = %v, want ErrInvalidImport", payload, err)
			}
			if recipes != nil {
				t.Fatalf("expected no recipes on failure, got %+v", recipes)
			}
		})
	}
}

func TestParseImportStripsIDsAndAcceptsStringQuantities(t *testing.T) {
	t.Parallel()

	payload := `[
	  {"id": 7, "title": "Sopa", "ingredients": [{"name": "Agua"}]},
	  {"id": 8, "title": "Tortilla", "description": "rápida", "ingredients": [
	    {"name": "Huevo", "specification": "3", "unit": "uds"},
	    {"name": "Sal", "specification": "", "unit": "pizca"},
	    {"name": "Aceite", "specification": null}
	  ]}
	]`

	recipes, err := ParseImport([]byte(payload))
	if err != nil {
		t.Fatalf("ParseImport() error = %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	for _, recipe := range recipes {
		if recipe.ID != 0 {
			t.Fatalf("expected id to be stripped, got %d", recipe.ID)
		}
	}
	if got := ingredientKey(recipes[1].Ingredients); got != "Huevo|3|uds;Sal|-|pizca;Aceite|-|" {
		t.Fatalf("ingredients = %q", got)
	}
	if recipes[1].Description != "rápida" {
		t.Fatalf("Description = %q", recipes[1].Description)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newOpenedStore(t)

	originals := []models.Recipe{
		{Title: "Tortilla", Description: "Con cebolla", Ingredients: []models.RecipeIngredient{{Name: "Huevo", Specification: floatPtr(3), Unit: "uds"}, {Name: "Patata", Specification: floatPtr(0.5), Unit: "kg"}}},
		{Title: "Sopa", Ingredients: []models.RecipeIngredient{{Name: "Agua"}}},
		{Title: "Sopa", Ingredients: []models.RecipeIngredient{{Name: "Agua"}}},
	}
	if _, err := store.AddAll(ctx, originals); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}

	stored, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	data, err := Export(stored)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	parsed, err := ParseImport(data)
	if err != nil {
		t.Fatalf("ParseImport() error = %v", err)
	}

	fresh := newOpenedStore(t)
	imported, err := fresh.AddAll(ctx, parsed)
	if err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}

	seen := map[uint]bool{}
	for _, recipe := range imported {
		if recipe.ID == 0 || seen[recipe.ID] {
			t.Fatalf("expected fresh pairwise distinct ids, got %d", recipe.ID)
		}
		seen[recipe.ID] = true
	}

	reloaded, err := fresh.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got, want := multiset(reloaded), multiset(stored); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", got, want)
	}
}

func multiset(recipes []models.Recipe) []string {
	keys := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		keys = append(keys, recipeKey(recipe))
	}
	sort.Strings(keys)
	return keys
}
