// Package storage opens the account and client stores selected by
// storage.driver.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"conectame/internal/config"
	"conectame/internal/database"
	"conectame/internal/repository"
	"conectame/internal/repository/boltdb"
	"conectame/internal/service"
)

type Backend struct {
	Driver   string
	Accounts service.AccountStore
	Clients  service.ClientStore
	Ping     func(ctx context.Context) error
	Close    func() error
}

func Open(ctx context.Context, cfg config.StorageConfig, pg config.PostgresConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.StorageDriverPostgres:
		return openPostgres(ctx, pg, log)
	case config.StorageDriverBolt:
		return openBolt(cfg.BoltPath, log)
	default:
		return Backend{}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, log zerolog.Logger) (Backend, error) {
	pool, err := database.NewPostgresPool(ctx, cfg)
	if err != nil {
		return Backend{}, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return Backend{}, err
	}
	log.Info().Msg("postgres storage ready")

	return Backend{
		Driver:   config.StorageDriverPostgres,
		Accounts: repository.NewAccountRepository(pool),
		Clients:  repository.NewClientRepository(pool),
		Ping:     pool.Ping,
		Close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openBolt(path string, log zerolog.Logger) (Backend, error) {
	db, err := boltdb.Open(path)
	if err != nil {
		return Backend{}, fmt.Errorf("open bolt: %w", err)
	}
	log.Info().Str("path", path).Msg("bolt storage ready")

	return Backend{
		Driver:   config.StorageDriverBolt,
		Accounts: boltdb.NewAccountStore(db),
		Clients:  boltdb.NewClientStore(db),
		Ping:     func(context.Context) error { return nil },
		Close:    db.Close,
	}, nil
}
