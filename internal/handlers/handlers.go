package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"

	applog "recetario/internal/log"
	"recetario/internal/recipes"
)

const (
	sessionNoticeKey = "flash:notice"
	sessionErrorKey  = "flash:error"

	maxImportBytes = 10 << 20
)

var (
	sessionManager *scs.SessionManager
	catalog        *recipes.Catalog
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, c *recipes.Catalog) {
	sessionManager = sm
	catalog = c
}

func requireCatalog(w http.ResponseWriter, r *http.Request) bool {
	if catalog == nil {
		applog.Debug(r.Context(), "recipe request without catalog", "path", r.URL.Path)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func flashNotice(r *http.Request, message string) {
	if sessionManager != nil {
		sessionManager.Put(r.Context(), sessionNoticeKey, message)
	}
}

func flashError(r *http.Request, message string) {
	if sessionManager != nil {
		sessionManager.Put(r.Context(), sessionErrorKey, message)
	}
}

func popFlash(r *http.Request) (notice, failure string) {
	if sessionManager == nil {
		return "", ""
	}
	return sessionManager.PopString(r.Context(), sessionNoticeKey), sessionManager.PopString(r.Context(), sessionErrorKey)
}

// statusFor maps catalog errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recipes.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, recipes.ErrNothingToExport):
		return http.StatusNotFound
	case recipes.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, recipes.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage turns an error into text suitable for the person using the app.
func userMessage(err error) string {
	var validationErr *recipes.ValidationError
	switch {
	case errors.Is(err, recipes.ErrNoValidIngredients):
		return "Por favor, añade al menos un ingrediente válido."
	case errors.Is(err, recipes.ErrTitleRequired):
		return "La receta necesita un nombre."
	case errors.As(err, &validationErr) && errors.Is(err, recipes.ErrInvalidSpecification):
		return "La cantidad del ingrediente " + strconv.Itoa(validationErr.Index+1) + " debe ser un número positivo."
	case errors.As(err, &validationErr) && errors.Is(err, recipes.ErrUnknownUnit):
		return "La unidad del ingrediente " + strconv.Itoa(validationErr.Index+1) + " no es válida."
	case errors.Is(err, recipes.ErrInvalidImport):
		return "Error al importar recetas. El archivo no es válido."
	case errors.Is(err, recipes.ErrNothingToExport):
		return "No hay recetas para exportar."
	case errors.Is(err, recipes.ErrNotFound):
		return "La receta no existe."
	default:
		return "No se pudo completar la operación. Inténtalo de nuevo."
	}
}

func parseID(value string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// isHTMX reports requests issued by htmx, including boosted links and forms.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("HX-Boosted") == "true"
}

// wantsHTML reports whether the caller is a browser rather than an API client.
func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
