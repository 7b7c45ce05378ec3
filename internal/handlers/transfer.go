package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	applog "recetario/internal/log"
	"recetario/internal/recipes"
)

// Export downloads the whole collection as an indented JSON document.
func Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireCatalog(w, r) {
		return
	}

	payload, err := catalog.Export(r.Context())
	if err != nil {
		if errors.Is(err, recipes.ErrNothingToExport) {
			applog.Debug(r.Context(), "export requested on empty collection")
		} else {
			applog.Error(r.Context(), "failed to export recipes", "error", err)
		}
		if wantsHTML(r) {
			flashError(r, userMessage(err))
			redirect(w, r, "/")
			return
		}
		writeJSONError(w, statusFor(err), userMessage(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+recipes.ExportFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		applog.Error(r.Context(), "failed to write export", "error", err)
	}
}

// Import adds every recipe of an uploaded JSON document as a new record.
func Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireCatalog(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	data, err := readImportPayload(r)
	if err != nil {
		applog.Debug(r.Context(), "failed to read import payload", "error", err)
		failImport(w, r, http.StatusBadRequest, "Error al importar recetas. El archivo no es válido.")
		return
	}

	added, err := catalog.Import(r.Context(), data)
	if err != nil {
		if errors.Is(err, recipes.ErrInvalidImport) {
			applog.Debug(r.Context(), "import rejected", "error", err)
		} else {
			applog.Error(r.Context(), "failed to import recipes", "error", err)
		}
		failImport(w, r, statusFor(err), userMessage(err))
		return
	}

	applog.Info(r.Context(), "recipes imported", "count", len(added))
	if wantsHTML(r) {
		flashNotice(r, "Recetas importadas: "+strconv.Itoa(len(added))+".")
		redirect(w, r, "/")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"imported": len(added), "recipes": added})
}

func readImportPayload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func failImport(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsHTML(r) {
		flashError(r, message)
		redirect(w, r, "/")
		return
	}
	writeJSONError(w, status, message)
}
