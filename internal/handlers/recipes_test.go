package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"recetario/internal/recipes"
)

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeListsRecipes(t *testing.T) {
	c, sm := withTestCatalog(t)
	seedRecipe(t, c, "Tortilla", recipes.IngredientInput{Name: "Huevo", Specification: "3", Unit: "uds"})

	rr := serve(sm, Home, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Tortilla") {
		t.Fatalf("expected list to include recipe title, got %q", body)
	}
	if !strings.Contains(body, "<!doctype html>") {
		t.Fatal("expected full page for non-htmx request")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	rr = serve(sm, Home, req)
	if strings.Contains(rr.Body.String(), "<!doctype html>") {
		t.Fatal("expected partial for htmx request")
	}
}

func TestHomeRejectsUnknownPaths(t *testing.T) {
	_, sm := withTestCatalog(t)

	rr := serve(sm, Home, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestRecipePagesWithoutCatalog(t *testing.T) {
	rr := httptest.NewRecorder()
	RecipePages(rr, httptest.NewRequest(http.MethodGet, "/recipes/new", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestCreateRecipeFromForm(t *testing.T) {
	c, sm := withTestCatalog(t)

	form := url.Values{
		"title":                    {"Tortilla"},
		"description":              {"Batir y cuajar."},
		"ingredient_name":          {"Huevo", "   ", "Patata"},
		"ingredient_specification": {"3", "", "0,5"},
		"ingredient_unit":          {"uds", "", "kg"},
	}
	rr := serve(sm, RecipePages, postForm("/recipes", form))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}

	list, err := c.Recipes(context.Background())
	if err != nil {
		t.Fatalf("Recipes() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one stored recipe, got %d", len(list))
	}
	got := list[0]
	if len(got.Ingredients) != 2 || got.Ingredients[0].Name != "Huevo" || got.Ingredients[1].Name != "Patata" {
		t.Fatalf("unexpected ingredients %+v", got.Ingredients)
	}
	if spec := got.Ingredients[1].Specification; spec == nil || *spec != 0.5 {
		t.Fatalf("expected comma decimal to parse as 0.5, got %v", spec)
	}

	follow := serve(sm, Home, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), rr))
	if !strings.Contains(follow.Body.String(), "Receta «Tortilla» añadida.") {
		t.Fatalf("expected flash notice after redirect, got %q", follow.Body.String())
	}
	again := serve(sm, Home, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), follow))
	if strings.Contains(again.Body.String(), "añadida") {
		t.Fatal("expected flash notice to be shown only once")
	}
}

func TestCreateRecipeRejectsBlankIngredients(t *testing.T) {
	c, sm := withTestCatalog(t)

	form := url.Values{
		"title":                    {"Vacía"},
		"ingredient_name":          {"", "  "},
		"ingredient_specification": {"1", "2"},
		"ingredient_unit":          {"uds", "uds"},
	}
	rr := serve(sm, RecipePages, postForm("/recipes", form))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Por favor, añade al menos un ingrediente válido.") {
		t.Fatalf("expected validation message, got %q", body)
	}
	if !strings.Contains(body, `value="Vacía"`) {
		t.Fatal("expected the form to keep the submitted title")
	}

	list, err := c.Recipes(context.Background())
	if err != nil {
		t.Fatalf("Recipes() error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no recipe to be stored, got %d", len(list))
	}
}

func TestRecipeFormAddRowKeepsInput(t *testing.T) {
	c, sm := withTestCatalog(t)

	form := url.Values{
		"title":                    {"Gazpacho"},
		"ingredient_name":          {"Tomate"},
		"ingredient_specification": {"1"},
		"ingredient_unit":          {"kg"},
		"add_row":                  {"1"},
	}
	rr := serve(sm, RecipePages, postForm("/recipes", form))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if n := strings.Count(body, `name="ingredient_name"`); n != 2 {
		t.Fatalf("expected two ingredient rows, got %d", n)
	}
	if !strings.Contains(body, `value="Tomate"`) {
		t.Fatal("expected existing row to be kept")
	}

	list, _ := c.Recipes(context.Background())
	if len(list) != 0 {
		t.Fatalf("adding a row must not store anything, got %d recipes", len(list))
	}
}

func TestEditRecipeFromForm(t *testing.T) {
	c, sm := withTestCatalog(t)
	id := seedRecipe(t, c, "Tortilla", recipes.IngredientInput{Name: "Huevo", Specification: "3", Unit: "uds"})
	target := "/recipes/" + strconv.FormatUint(uint64(id), 10)

	rr := serve(sm, RecipePages, httptest.NewRequest(http.MethodGet, target+"/edit", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected edit form, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="Huevo"`) {
		t.Fatal("expected edit form to be prefilled")
	}

	form := url.Values{
		"title":                    {"Tortilla de patatas"},
		"ingredient_name":          {"Huevo", "Patata", ""},
		"ingredient_specification": {"4", "2", "1"},
		"ingredient_unit":          {"uds", "uds", "uds"},
	}
	rr = serve(sm, RecipePages, postForm(target, form))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}

	got, err := c.Recipe(context.Background(), id)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if got.Title != "Tortilla de patatas" || len(got.Ingredients) != 2 {
		t.Fatalf("unexpected recipe after edit %+v", got)
	}
}

func TestEditImportedRecipeKeepsStoredUnit(t *testing.T) {
	c, sm := withTestCatalog(t)
	imported, err := c.Import(context.Background(), []byte(`[{"title":"Sopa","ingredients":[{"name":"Agua","specification":"1","unit":"Litros"}]}]`))
	if err != nil || len(imported) != 1 {
		t.Fatalf("Import() = %v, %v", imported, err)
	}
	target := "/recipes/" + strconv.FormatUint(uint64(imported[0].ID), 10)

	rr := serve(sm, RecipePages, httptest.NewRequest(http.MethodGet, target+"/edit", nil))
	if !strings.Contains(rr.Body.String(), `<option value="Litros" selected>Litros</option>`) {
		t.Fatalf("expected stored unit to be selectable: %s", rr.Body.String())
	}

	form := url.Values{
		"title":                    {"Sopa de sobre"},
		"ingredient_name":          {"Agua", ""},
		"ingredient_specification": {"1", "1"},
		"ingredient_unit":          {"Litros", "uds"},
	}
	rr = serve(sm, RecipePages, postForm(target, form))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}

	got, err := c.Recipe(context.Background(), imported[0].ID)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if got.Title != "Sopa de sobre" || len(got.Ingredients) != 1 || got.Ingredients[0].Unit != "Litros" {
		t.Fatalf("unexpected recipe after edit %+v", got)
	}
}

func TestEditRecipeMissingIsNotFound(t *testing.T) {
	_, sm := withTestCatalog(t)

	for _, target := range []string{"/recipes/99", "/recipes/99/edit", "/recipes/abc"} {
		rr := serve(sm, RecipePages, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", target, rr.Code)
		}
	}
}

func TestShowRecipe(t *testing.T) {
	c, sm := withTestCatalog(t)
	id := seedRecipe(t, c, "Tortilla", recipes.IngredientInput{Name: "Huevo", Specification: "3", Unit: "uds"})

	rr := serve(sm, RecipePages, httptest.NewRequest(http.MethodGet, "/recipes/"+strconv.FormatUint(uint64(id), 10), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Huevo (3 uds)") {
		t.Fatalf("expected ingredient label, got %q", rr.Body.String())
	}
}

func TestDeleteRecipe(t *testing.T) {
	c, sm := withTestCatalog(t)
	id := seedRecipe(t, c, "Tortilla", recipes.IngredientInput{Name: "Huevo"})

	req := httptest.NewRequest(http.MethodPost, "/recipes/"+strconv.FormatUint(uint64(id), 10)+"/delete", nil)
	req.Header.Set("HX-Request", "true")
	rr := serve(sm, RecipePages, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	if got := rr.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("expected HX-Redirect to /, got %q", got)
	}

	if _, err := c.Recipe(context.Background(), id); err == nil {
		t.Fatal("expected recipe to be deleted")
	}

	rr = serve(sm, RecipePages, httptest.NewRequest(http.MethodPost, "/recipes/"+strconv.FormatUint(uint64(id), 10)+"/delete", nil))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("deleting an absent recipe should still redirect, got %d", rr.Code)
	}
}

func TestRecipePagesMethodNotAllowed(t *testing.T) {
	_, sm := withTestCatalog(t)

	rr := serve(sm, RecipePages, httptest.NewRequest(http.MethodGet, "/recipes/1/delete", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}
