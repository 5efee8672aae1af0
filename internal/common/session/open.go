package session

import (
	"context"
	"fmt"

	"supplier-portal/internal/common/config"
	"supplier-portal/internal/common/database"
)

// Open returns the Store selected by session.driver and a function that
// releases it.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.Session.Driver {
	case "", config.SessionDriverMemory:
		return NewMemoryStore(), func() error { return nil }, nil
	case config.SessionDriverRedis:
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return NewRedisStore(rdb, cfg.Session.KeyPrefix, 0), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}
