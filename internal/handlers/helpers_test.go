package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recetario/internal/recipes"
)

var testDatabaseSeq atomic.Int64

// withTestCatalog configures the handlers with a fresh in-memory store and a
// session manager, and resets them when the test finishes.
func withTestCatalog(t *testing.T) (*recipes.Catalog, *scs.SessionManager) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDatabaseSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := recipes.NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Open(context.Background(), 1); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	c := recipes.NewCatalog(store, recipes.NewBuilder(), recipes.EditPolicy{})
	sm := scs.New()
	Configure(sm, c)
	t.Cleanup(func() {
		Configure(nil, nil)
	})
	return c, sm
}

func serve(sm *scs.SessionManager, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	sm.LoadAndSave(handler).ServeHTTP(rr, req)
	return rr
}

func withCookies(req *http.Request, rr *httptest.ResponseRecorder) *http.Request {
	for _, cookie := range rr.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func seedRecipe(t *testing.T, c *recipes.Catalog, title string, ingredients ...recipes.IngredientInput) uint {
	t.Helper()
	created, err := c.Create(context.Background(), recipes.Draft{Title: title, Ingredients: ingredients})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return created.ID
}
