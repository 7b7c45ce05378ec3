package recipes

import (
	"errors"
	"fmt"
)

var (
	ErrNoValidIngredients   = errors.New("recipe needs at least one ingredient with a name")
	ErrTitleRequired        = errors.New("recipe title is required")
	ErrInvalidSpecification = errors.New("specification must be a positive number")
	ErrUnknownUnit          = errors.New("unknown unit")
	ErrMissingID            = errors.New("recipe id is required")
	ErrNotFound             = errors.New("recipe not found")
	ErrNotInitialized       = errors.New("recipe collection does not exist; open the store first")
	ErrInvalidVersion       = errors.New("schema version must be at least 1")
	ErrVersionDowngrade     = errors.New("stored schema version is newer than requested")
	ErrInvalidImport        = errors.New("import payload must be a JSON array of recipes")
	ErrNothingToExport      = errors.New("no recipes to export")
)

// ValidationError points at the offending form field. Index is -1 for recipe level fields.
type ValidationError struct {
	Field string
	Index int
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("ingredient %d %s %q: %v", e.Index+1, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a user input problem rather than a storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoValidIngredients) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidSpecification) ||
		errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrInvalidImport) ||
		errors.Is(err, ErrMissingID)
}
