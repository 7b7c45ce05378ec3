package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "recetario/internal/log"
	"recetario/internal/recipes"
)

// New returns an in-memory sqlite database with an opened recipe store seeded
// with a few sample recipes.
func New(ctx context.Context) (*gorm.DB, *recipes.Store, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:recetario-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := recipes.NewStore(db)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Open(ctx, 1); err != nil {
		return nil, nil, err
	}

	if err := seed(ctx, store); err != nil {
		return nil, nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, store, nil
}

func seed(ctx context.Context, store *recipes.Store) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		applog.Debug(ctx, "mock database already seeded", "recipes", len(existing))
		return nil
	}

	applog.Debug(ctx, "seeding mock database")

	builder := recipes.NewBuilder()
	drafts := []recipes.Draft{
		{
			Title:       "Tortilla de patatas",
			Description: "Patatas pochadas a fuego lento y cuajado jugoso.",
			Ingredients: []recipes.IngredientInput{
				{Name: "Huevo", Specification: "6", Unit: "uds"},
				{Name: "Patata", Specification: "700", Unit: "gr"},
				{Name: "Cebolla", Specification: "1", Unit: "unidad"},
				{Name: "Aceite de oliva", Specification: "200", Unit: "ml"},
				{Name: "Sal", Specification: "1", Unit: "pizca"},
			},
		},
		{
			Title:       "Gazpacho",
			Description: "Sopa fría de tomate para el verano.",
			Ingredients: []recipes.IngredientInput{
				{Name: "Tomate", Specification: "1", Unit: "kg"},
				{Name: "Pepino", Specification: "1", Unit: "unidad"},
				{Name: "Pimiento verde", Specification: "1", Unit: "unidad"},
				{Name: "Ajo", Specification: "1", Unit: "uds"},
				{Name: "Vinagre", Specification: "2", Unit: "cucharada"},
			},
		},
		{
			Title: "Arroz con leche",
			Ingredients: []recipes.IngredientInput{
				{Name: "Arroz", Specification: "1", Unit: "taza"},
				{Name: "Leche", Specification: "1", Unit: "l"},
				{Name: "Azúcar", Specification: "150", Unit: "gr"},
				{Name: "Canela en rama"},
			},
		},
	}

	for _, draft := range drafts {
		recipe, err := builder.Build(draft)
		if err != nil {
			return err
		}
		if _, err := store.Add(ctx, recipe); err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded", "recipes", len(drafts))
	return nil
}
