package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/service"
	"inkwell/internal/store"
	"inkwell/internal/store/memstore"
)

// backend is the storage selected by STORAGE_DRIVER.
type backend struct {
	deps  service.Deps
	ping  func(ctx context.Context) error
	close func()
}

func openStorage(cfg *config.Config) (*backend, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		slog.Warn("using in-memory storage; content is lost on restart")
		st := memstore.New()
		return &backend{
			deps: service.Deps{
				Tx:         st,
				Posts:      st.Posts(),
				Categories: st.Categories(),
				Links:      st.Links(),
			},
			close: func() {},
		}, nil

	case config.DriverPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &backend{
			deps: service.Deps{
				Tx:         store.NewTxManager(db),
				Posts:      store.NewPostStore(db),
				Categories: store.NewCategoryStore(db),
				Links:      store.NewLinkStore(db),
			},
			ping:  db.PingContext,
			close: closeOnce(db),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func closeOnce(db *sql.DB) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := db.Close(); err != nil {
				slog.Warn("database close failed", "error", err)
			}
		})
	}
}
