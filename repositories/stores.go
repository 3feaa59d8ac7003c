package repositories

import (
	"context"
	"fmt"

	"dashboard-project/backend/dashboard-service/config"
)

// Open returns the record stores for the configured driver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	case config.DriverREST:
		return OpenREST(cfg.BackendURL, cfg.BackendKey, cfg.BreakerTimeout), nil
	case config.DriverMemory:
		return OpenMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
