package mock

import (
	"context"
	"testing"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, store, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	recipes, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) == 0 {
		t.Fatal("expected seeded recipes")
	}
	for _, recipe := range recipes {
		if recipe.IngredientCount() == 0 {
			t.Fatalf("seeded recipe %q has no ingredients", recipe.Title)
		}
	}

	if _, again, err := New(ctx); err != nil {
		t.Fatalf("second initialization failed: %v", err)
	} else if reseeded, err := again.List(ctx); err != nil || len(reseeded) != len(recipes) {
		t.Fatalf("expected reseeding to be skipped, got %d recipes (%v)", len(reseeded), err)
	}
}
