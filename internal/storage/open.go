package storage

import (
	"context"
	"fmt"
	"log"

	"rrstudy/internal/config"
	"rrstudy/internal/database"
	"rrstudy/internal/repository"
)

// Open builds the store selected by cfg.StorageDriver. The returned close
// function releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch {
	case cfg.StorageDriver == "memory":
		log.Printf("Using in-memory storage; progress is lost on restart")
		return NewMemoryStore(), noop, nil

	case cfg.StorageDriver == "redis":
		store, err := NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, unavailable("connect to redis", err)
		}
		log.Printf("Using redis storage")
		return store, store.Close, nil

	case cfg.UsesSQL():
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, unavailable("connect to database", err)
		}
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Printf("Using %s storage", db.Dialect.DriverName())
		return NewSQLStore(repository.NewProgressRepository(db)), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
}
