package handlers

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	applog "recetario/internal/log"
	"recetario/internal/recipes"
	"recetario/internal/views/pages"
)

// Home renders the recipe list.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireCatalog(w, r) {
		return
	}

	list, err := catalog.Recipes(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to load recipes for list", "error", err)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}

	notice, failure := popFlash(r)
	data := pages.RecipeListData{Recipes: list, Notice: notice, Error: failure}

	var component templ.Component
	if isHTMX(r) {
		component = pages.RecipeListPartial(data)
	} else {
		component = pages.RecipeList(data)
	}
	render(w, r, http.StatusOK, component)
}

// RecipePages serves the create, detail, edit and delete flows under /recipes.
func RecipePages(w http.ResponseWriter, r *http.Request) {
	if !requireCatalog(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodPost:
			createRecipe(w, r)
		case http.MethodGet:
			redirect(w, r, "/")
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "new" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renderForm(w, r, http.StatusOK, pages.NewRecipeForm())
		return
	}

	segments := strings.Split(path, "/")
	id, ok := parseID(segments[0])
	if !ok || len(segments) > 2 {
		applog.Debug(r.Context(), "invalid recipe path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	action := ""
	if len(segments) == 2 {
		action = segments[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		showRecipe(w, r, id)
	case action == "" && r.Method == http.MethodPost:
		editRecipe(w, r, id)
	case action == "edit" && r.Method == http.MethodGet:
		editRecipeForm(w, r, id)
	case action == "delete" && r.Method == http.MethodPost:
		deleteRecipe(w, r, id)
	case action == "" || action == "edit" || action == "delete":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	draft, form, ok := readRecipeForm(w, r, pages.NewRecipeForm())
	if !ok {
		return
	}

	created, err := catalog.Create(r.Context(), draft)
	if err != nil {
		if recipes.IsValidation(err) {
			applog.Debug(r.Context(), "recipe create rejected", "error", err)
			form.Error = userMessage(err)
			renderForm(w, r, http.StatusUnprocessableEntity, form)
			return
		}
		applog.Error(r.Context(), "failed to create recipe", "error", err)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}

	flashNotice(r, "Receta «"+created.Title+"» añadida.")
	redirect(w, r, "/")
}

func showRecipe(w http.ResponseWriter, r *http.Request, id uint) {
	recipe, err := catalog.Recipe(r.Context(), id)
	if err != nil {
		applog.Debug(r.Context(), "recipe detail unavailable", "id", id, "error", err)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}
	render(w, r, http.StatusOK, pages.RecipeDetail(recipe))
}

func editRecipeForm(w http.ResponseWriter, r *http.Request, id uint) {
	recipe, err := catalog.Recipe(r.Context(), id)
	if err != nil {
		applog.Debug(r.Context(), "recipe edit form unavailable", "id", id, "error", err)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}
	renderForm(w, r, http.StatusOK, pages.EditRecipeForm(recipe))
}

func editRecipe(w http.ResponseWriter, r *http.Request, id uint) {
	existing, err := catalog.Recipe(r.Context(), id)
	if err != nil {
		http.Error(w, userMessage(err), statusFor(err))
		return
	}

	draft, form, ok := readRecipeForm(w, r, pages.EditRecipeForm(existing))
	if !ok {
		return
	}

	updated, err := catalog.Edit(r.Context(), id, draft)
	if err != nil {
		if recipes.IsValidation(err) {
			applog.Debug(r.Context(), "recipe edit rejected", "id", id, "error", err)
			form.Error = userMessage(err)
			renderForm(w, r, http.StatusUnprocessableEntity, form)
			return
		}
		applog.Error(r.Context(), "failed to update recipe", "error", err, "id", id)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}

	flashNotice(r, "Receta «"+updated.Title+"» guardada.")
	redirect(w, r, "/")
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, id uint) {
	if err := catalog.Remove(r.Context(), id); err != nil {
		applog.Error(r.Context(), "failed to delete recipe", "error", err, "id", id)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}
	flashNotice(r, "Receta borrada.")
	redirect(w, r, "/")
}

// readRecipeForm parses the posted form. When the visitor asked for another
// ingredient row it re-renders the form and reports ok=false.
func readRecipeForm(w http.ResponseWriter, r *http.Request, base pages.RecipeFormData) (recipes.Draft, pages.RecipeFormData, bool) {
	if err := r.ParseForm(); err != nil {
		applog.Debug(r.Context(), "failed to parse recipe form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return recipes.Draft{}, base, false
	}

	names := r.PostForm["ingredient_name"]
	specs := r.PostForm["ingredient_specification"]
	units := r.PostForm["ingredient_unit"]

	rows := make([]pages.IngredientRow, len(names))
	inputs := make([]recipes.IngredientInput, len(names))
	for i, name := range names {
		row := pages.IngredientRow{Name: name, Specification: valueAt(specs, i), Unit: valueAt(units, i)}
		rows[i] = row
		inputs[i] = recipes.IngredientInput{Name: row.Name, Specification: row.Specification, Unit: row.Unit}
	}

	form := base
	form.Title = r.PostFormValue("title")
	form.Description = r.PostFormValue("description")
	form.Ingredients = rows

	if r.PostFormValue("add_row") != "" {
		form.Ingredients = append(form.Ingredients, pages.BlankIngredientRow())
		renderForm(w, r, http.StatusOK, form)
		return recipes.Draft{}, form, false
	}

	draft := recipes.Draft{
		Title:       form.Title,
		Description: form.Description,
		Ingredients: inputs,
	}
	return draft, form, true
}

func valueAt(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}
	return ""
}

func renderForm(w http.ResponseWriter, r *http.Request, status int, form pages.RecipeFormData) {
	var component templ.Component
	if isHTMX(r) {
		component = pages.RecipeFormPartial(form)
	} else {
		component = pages.RecipeForm(form)
	}
	render(w, r, status, component)
}

func render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render component", "error", err)
	}
}
