// Package stores picks the sources.Store backend named by the config.
package stores

import (
	"context"
	"fmt"

	"researchhub/researchhub/config"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/sources/memory"
	"researchhub/researchhub/sources/mongo"
	"researchhub/researchhub/sources/psql"
)

// Open connects to cfg.StoreDriver. The memory driver is seeded with the
// demo account.
func Open(ctx context.Context, cfg config.Config) (sources.Store, error) {
	var (
		store sources.Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		store, err = mongo.Open(ctx, cfg.MongoURL, cfg.MongoDB)
	case config.DriverPostgres:
		store, err = psql.NewDatabase(ctx, cfg)
	case config.DriverMemory:
		store, err = memory.New(memory.WithDemoUser())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	return store, nil
}

// OpenWithFallback behaves like Open but degrades to the seeded memory
// store when the database cannot be reached. The returned bool reports
// whether the fallback was taken.
func OpenWithFallback(ctx context.Context, cfg config.Config) (sources.Store, bool, error) {
	store, err := Open(ctx, cfg)
	if err == nil {
		return store, false, nil
	}
	mem, memErr := memory.New(memory.WithDemoUser())
	if memErr != nil {
		return nil, false, fmt.Errorf("%w (memory fallback: %v)", err, memErr)
	}
	return mem, true, err
}
