package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recetario/internal/recipes"
)

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
	if resp.Time.IsZero() {
		t.Fatal("expected response time to be populated")
	}
	if resp.Recipes != nil {
		t.Fatalf("expected no recipe count without a catalog, got %d", *resp.Recipes)
	}
}

func TestHealthReportsRecipeCount(t *testing.T) {
	c, _ := withTestCatalog(t)
	seedRecipe(t, c, "Tortilla", recipes.IngredientInput{Name: "Huevo", Specification: "3", Unit: "uds"})

	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Recipes == nil || *resp.Recipes != 1 {
		t.Fatalf("expected recipe count 1, got %v", resp.Recipes)
	}
}
