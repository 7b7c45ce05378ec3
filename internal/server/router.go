package server

import (
	"context"
	"net/http"

	"recetario/internal/handlers"
	applog "recetario/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.HandleFunc("/recipes", handlers.RecipePages)
	mux.HandleFunc("/recipes/", handlers.RecipePages)
	applog.Debug(context.Background(), "route registered", "path", "/recipes/")
	mux.HandleFunc("/export", handlers.Export)
	applog.Debug(context.Background(), "route registered", "path", "/export")
	mux.HandleFunc("/import", handlers.Import)
	applog.Debug(context.Background(), "route registered", "path", "/import")
	mux.HandleFunc("/api/recipes", handlers.RecipeAPI)
	mux.HandleFunc("/api/recipes/", handlers.RecipeAPI)
	applog.Debug(context.Background(), "route registered", "path", "/api/recipes/", "api", true)
	mux.HandleFunc("/", handlers.Home)
	applog.Debug(context.Background(), "route registered", "path", "/")
	return mux
}
