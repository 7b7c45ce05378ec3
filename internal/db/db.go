package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"recetario/internal/config"
	applog "recetario/internal/log"
	"recetario/internal/recipes"
)

// Dialector picks the gorm driver for url. Postgres URLs use the postgres driver;
// anything else is treated as a sqlite file path or DSN.
func Dialector(url string) gorm.Dialector {
	trimmed := strings.TrimSpace(url)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgres.Open(trimmed)
	}
	return sqlite.Open(sqliteDSN(trimmed))
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_busy_timeout") {
		return path
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + "_busy_timeout=5000"
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	gormCfg := &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(Dialector(cfg.URL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

// OpenStore prepares the recipe collection at version on an initialized handle.
func OpenStore(ctx context.Context, db *gorm.DB, version int) (*recipes.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	store, err := recipes.NewStore(db)
	if err != nil {
		return nil, err
	}
	if err := store.Open(ctx, version); err != nil {
		return nil, fmt.Errorf("open recipe store: %w", err)
	}
	applog.Debug(ctx, "recipe store ready", "version", version)
	return store, nil
}

// Configure opens the database and the recipe store in one step.
func Configure(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, *recipes.Store, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, nil, err
	}

	version := cfg.SchemaVersion
	if version == 0 {
		version = 1
	}

	store, err := OpenStore(ctx, database, version)
	if err != nil {
		Close(database)
		return nil, nil, err
	}

	return database, store, nil
}

// Close releases the pooled connections behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
