package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotctl/internal/repositories"
	"github.com/desertthunder/spotctl/internal/shared"
)

// openTokenStore builds the [repositories.TokenStore] selected by store.driver.
//
// The SQLite store runs pending migrations before it is returned.
func (r *Runner) openTokenStore(ctx context.Context, config *shared.Config) (repositories.TokenStore, error) {
	switch config.Store.Driver {
	case shared.StoreMemory, "":
		r.logger.Warn("using in-memory token store, authorizations are lost on restart")
		return repositories.NewMemoryTokenStore(), nil

	case shared.StoreSQLite:
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: failed to run migrations: %v", shared.ErrStore, err)
		}
		r.logger.Info("using sqlite token store", "path", config.Database.Path)
		return repositories.NewSQLiteTokenStore(db), nil

	case shared.StoreRedis:
		client, err := repositories.NewRedisClient(ctx, config.Redis)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
		r.logger.Info("using redis token store", "addr", config.Redis.Addr)
		return repositories.NewRedisTokenStore(client, config.Redis.KeyPrefix, 0), nil

	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", shared.ErrInvalidConfig, config.Store.Driver)
	}
}
