package recipes

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recetario/models"
)

var databaseSeq atomic.Int64

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), databaseSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newOpenedStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(newTestDatabase(t))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Open(context.Background(), 1); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return store
}

func floatPtr(v float64) *float64 {
	return &v
}

func ingredientKey(ingredients []models.RecipeIngredient) string {
	parts := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		spec := "-"
		if ingredient.Specification != nil {
			spec = fmt.Sprintf("%g", *ingredient.Specification)
		}
		parts = append(parts, fmt.Sprintf("%s|%s|%s", ingredient.Name, spec, ingredient.Unit))
	}
	return strings.Join(parts, ";")
}

func recipeKey(recipe models.Recipe) string {
	return fmt.Sprintf("%s#%s#%s", recipe.Title, recipe.Description, ingredientKey(recipe.Ingredients))
}
