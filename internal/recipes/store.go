package recipes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	applog "recetario/internal/log"
	"recetario/models"
)

// CollectionName identifies the recipe collection in the schema table.
const CollectionName = "recipes"

// Store persists recipes through an injected gorm handle. Each data operation is
// its own unit of work; writes that touch more than one row run in a transaction.
type Store struct {
	db *gorm.DB
}

// NewStore wraps db. The caller owns the handle and closes it.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &Store{db: db}, nil
}

// Open creates or upgrades the recipe collection to version. Reopening at the
// recorded version leaves existing data untouched.
func (s *Store) Open(ctx context.Context, version int) error {
	if version < 1 {
		return ErrInvalidVersion
	}

	db := s.db.WithContext(ctx)
	migrator := db.Migrator()

	if !migrator.HasTable(&models.StoreSchema{}) {
		applog.Debug(ctx, "creating schema table")
		if err := migrator.CreateTable(&models.StoreSchema{}); err != nil {
			return fmt.Errorf("create schema table: %w", err)
		}
	}

	current, err := s.recordedVersion(db)
	if err != nil {
		return err
	}
	if current > version {
		return fmt.Errorf("%w: stored %d, requested %d", ErrVersionDowngrade, current, version)
	}

	ready := migrator.HasTable(&models.Recipe{}) && migrator.HasTable(&models.RecipeIngredient{})
	if current == version && ready {
		applog.Debug(ctx, "recipe collection already at version", "version", version)
		return nil
	}

	applog.Info(ctx, "upgrading recipe collection", "from", current, "to", version)
	if err := migrator.AutoMigrate(&models.Recipe{}, &models.RecipeIngredient{}); err != nil {
		return fmt.Errorf("migrate recipe collection: %w", err)
	}

	schema := models.StoreSchema{Name: CollectionName, Version: version}
	if err := db.Save(&schema).Error; err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Version returns the recorded schema version, or 0 when the store was never opened.
func (s *Store) Version(ctx context.Context) (int, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.StoreSchema{}) {
		return 0, nil
	}
	return s.recordedVersion(db)
}

func (s *Store) recordedVersion(db *gorm.DB) (int, error) {
	var schema models.StoreSchema
	err := db.Where("name = ?", CollectionName).Limit(1).Find(&schema).Error
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return schema.Version, nil
}

func (s *Store) ready(ctx context.Context) (*gorm.DB, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.Recipe{}) {
		applog.Error(ctx, "recipe collection missing")
		return nil, ErrNotInitialized
	}
	return db, nil
}

func preloadOrdered(db *gorm.DB) *gorm.DB {
	return db.Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc, id asc")
	})
}

// List returns every recipe in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Recipe, error) {
	db, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	var results []models.Recipe
	if err := preloadOrdered(db).Order("id asc").Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return results, nil
}

// Get loads a single recipe.
func (s *Store) Get(ctx context.Context, id uint) (models.Recipe, error) {
	db, err := s.ready(ctx)
	if err != nil {
		return models.Recipe{}, err
	}

	var recipe models.Recipe
	if err := preloadOrdered(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", id)
		return models.Recipe{}, fmt.Errorf("load recipe %d: %w", id, err)
	}
	return recipe, nil
}

// Add inserts recipe as a new record. Any ID on the input is discarded.
func (s *Store) Add(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	created, err := s.AddAll(ctx, []models.Recipe{recipe})
	if err != nil {
		return models.Recipe{}, err
	}
	return created[0], nil
}

// AddAll inserts every recipe in a single transaction with store assigned ids.
func (s *Store) AddAll(ctx context.Context, recipes []models.Recipe) ([]models.Recipe, error) {
	db, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]models.Recipe, 0, len(recipes))
	err = db.Transaction(func(tx *gorm.DB) error {
		for idx, recipe := range recipes {
			record := recipe.Clone()
			record.ID = 0
			ingredients := record.Ingredients
			record.Ingredients = nil

			if err := tx.Omit("Ingredients").Create(&record).Error; err != nil {
				return fmt.Errorf("create recipe %d (%s): %w", idx+1, recipe.Title, err)
			}
			if err := insertIngredients(tx, record.ID, ingredients); err != nil {
				return fmt.Errorf("create ingredients for recipe %d (%s): %w", idx+1, recipe.Title, err)
			}
			record.Ingredients = ingredients
			created = append(created, record)
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to add recipes", "error", err, "count", len(recipes))
		return nil, err
	}

	applog.Debug(ctx, "recipes added", "count", len(created))
	return created, nil
}

// Update replaces the stored recipe with the same ID, inserting it when absent.
func (s *Store) Update(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	if recipe.ID == 0 {
		return models.Recipe{}, ErrMissingID
	}

	db, err := s.ready(ctx)
	if err != nil {
		return models.Recipe{}, err
	}

	record := recipe.Clone()
	ingredients := record.Ingredients
	record.Ingredients = nil

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.Recipe
		result := tx.Limit(1).Find(&existing, record.ID)
		if result.Error != nil {
			return fmt.Errorf("load recipe %d: %w", record.ID, result.Error)
		}

		if result.RowsAffected == 0 {
			applog.Debug(ctx, "update target missing, inserting", "id", record.ID)
			if err := tx.Omit("Ingredients").Create(&record).Error; err != nil {
				return fmt.Errorf("insert recipe %d: %w", record.ID, err)
			}
			if err := syncIDSequence(tx); err != nil {
				return err
			}
		} else {
			updates := map[string]any{
				"title":       record.Title,
				"description": record.Description,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return fmt.Errorf("update recipe %d: %w", record.ID, err)
			}
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = existing.UpdatedAt
			if err := tx.Where("recipe_id = ?", record.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("clear ingredients for recipe %d: %w", record.ID, err)
			}
		}

		return insertIngredients(tx, record.ID, ingredients)
	})
	if err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipe.ID)
		return models.Recipe{}, err
	}

	record.Ingredients = ingredients
	applog.Debug(ctx, "recipe updated", "id", record.ID, "ingredients", len(ingredients))
	return record, nil
}

// Delete removes the recipe and its ingredients. Missing ids are not an error.
func (s *Store) Delete(ctx context.Context, id uint) error {
	db, err := s.ready(ctx)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete ingredients for recipe %d: %w", id, err)
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("delete recipe %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", id)
		return err
	}

	applog.Debug(ctx, "recipe deleted", "id", id)
	return nil
}

// resetRecipeSequenceSQL moves the postgres id sequence past the highest stored id.
const resetRecipeSequenceSQL = "SELECT setval(pg_get_serial_sequence('recipes', 'id'), (SELECT COALESCE(MAX(id), 1) FROM recipes))"

// syncIDSequence keeps later inserts from reusing an id written explicitly.
// sqlite derives the next rowid from the table, so only postgres needs it.
func syncIDSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec(resetRecipeSequenceSQL).Error; err != nil {
		return fmt.Errorf("advance recipe id sequence: %w", err)
	}
	return nil
}

// insertIngredients writes rows in order, rewriting ids and positions in place.
func insertIngredients(tx *gorm.DB, recipeID uint, ingredients []models.RecipeIngredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].ID = 0
		ingredients[i].RecipeID = recipeID
		ingredients[i].Position = i
	}
	return tx.Create(&ingredients).Error
}
