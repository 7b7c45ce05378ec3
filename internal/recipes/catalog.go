package recipes

import (
	"context"
	"errors"
	"sort"
	"sync"

	applog "recetario/internal/log"
	"recetario/models"
)

// Catalog keeps an in-memory copy of the collection for the UI. Mutations go
// through the store first and are then applied to the cache as deltas; Load is
// only needed at start-up or to recover from an unknown state.
type Catalog struct {
	store   *Store
	builder *Builder
	policy  EditPolicy

	loadMu  sync.Mutex
	mu      sync.RWMutex
	loaded  bool
	recipes []models.Recipe
}

// NewCatalog wires a store and builder together.
func NewCatalog(store *Store, builder *Builder, policy EditPolicy) *Catalog {
	if builder == nil {
		builder = NewBuilder()
	}
	return &Catalog{store: store, builder: builder, policy: policy}
}

// Load replaces the cache with the stored collection.
func (c *Catalog) Load(ctx context.Context) error {
	recipes, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes = recipes
	c.loaded = true
	applog.Debug(ctx, "catalog loaded", "recipes", len(recipes))
	return nil
}

func (c *Catalog) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	c.mu.RLock()
	loaded = c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

// Recipes returns a copy of every cached recipe ordered by id.
func (c *Catalog) Recipes(ctx context.Context) ([]models.Recipe, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Recipe, len(c.recipes))
	for i, recipe := range c.recipes {
		out[i] = recipe.Clone()
	}
	return out, nil
}

// Recipe returns the cached recipe with id.
func (c *Catalog) Recipe(ctx context.Context, id uint) (models.Recipe, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return models.Recipe{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.recipes[idx].Clone(), nil
	}
	return models.Recipe{}, ErrNotFound
}

// Create validates draft and stores it as a new recipe.
func (c *Catalog) Create(ctx context.Context, draft Draft) (models.Recipe, error) {
	recipe, err := c.builder.Build(draft)
	if err != nil {
		return models.Recipe{}, err
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return models.Recipe{}, err
	}

	created, err := c.store.Add(ctx, recipe)
	if err != nil {
		return models.Recipe{}, err
	}

	c.upsert(created)
	applog.Info(ctx, "recipe created", "id", created.ID, "title", created.Title)
	return created.Clone(), nil
}

// Edit validates draft and replaces the recipe identified by id.
func (c *Catalog) Edit(ctx context.Context, id uint, draft Draft) (models.Recipe, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return models.Recipe{}, err
	}

	var stored []models.RecipeIngredient
	c.mu.RLock()
	if idx := c.indexOf(id); idx >= 0 {
		stored = c.recipes[idx].Ingredients
	}
	c.mu.RUnlock()

	recipe, err := c.builder.Rebuild(id, draft, c.policy, stored)
	if err != nil {
		return models.Recipe{}, err
	}

	updated, err := c.store.Update(ctx, recipe)
	if err != nil {
		return models.Recipe{}, err
	}

	c.upsert(updated)
	if len(updated.Ingredients) == 0 {
		applog.Warn(ctx, "recipe saved without ingredients", "id", updated.ID)
	}
	applog.Info(ctx, "recipe updated", "id", updated.ID)
	return updated.Clone(), nil
}

// Remove deletes the recipe identified by id.
func (c *Catalog) Remove(ctx context.Context, id uint) error {
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.recipes = append(c.recipes[:idx], c.recipes[idx+1:]...)
	}
	c.mu.Unlock()

	applog.Info(ctx, "recipe deleted", "id", id)
	return nil
}

// Export serializes the cached collection.
func (c *Catalog) Export(ctx context.Context) ([]byte, error) {
	recipes, err := c.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	return Export(recipes)
}

// Import parses data and inserts every entry as a new recipe in one batch.
func (c *Catalog) Import(ctx context.Context, data []byte) ([]models.Recipe, error) {
	parsed, err := ParseImport(data)
	if err != nil {
		return nil, err
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	created, err := c.store.AddAll(ctx, parsed)
	if err != nil {
		if reloadErr := c.Load(ctx); reloadErr != nil {
			return nil, errors.Join(err, reloadErr)
		}
		return nil, err
	}

	for _, recipe := range created {
		c.upsert(recipe)
	}
	applog.Info(ctx, "recipes imported", "count", len(created))

	out := make([]models.Recipe, len(created))
	for i, recipe := range created {
		out[i] = recipe.Clone()
	}
	return out, nil
}

func (c *Catalog) upsert(recipe models.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := recipe.Clone()
	if idx := c.indexOf(recipe.ID); idx >= 0 {
		c.recipes[idx] = stored
		return
	}
	c.recipes = append(c.recipes, stored)
	sort.SliceStable(c.recipes, func(i, j int) bool {
		return c.recipes[i].ID < c.recipes[j].ID
	})
}

// indexOf must be called with mu held.
func (c *Catalog) indexOf(id uint) int {
	for i, recipe := range c.recipes {
		if recipe.ID == id {
			return i
		}
	}
	return -1
}
