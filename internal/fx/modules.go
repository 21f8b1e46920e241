package fx

import (
	"context"
	"database/sql"

	"arena-god/internal/api"
	"arena-god/internal/config"
	"arena-god/internal/constants"
	"arena-god/internal/database"
	"arena-god/internal/logger"
	"arena-god/internal/lookup"
	"arena-god/internal/repository"
	"arena-god/internal/server"
	"arena-god/internal/service"
	"arena-god/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideKV picks the storage backend named by STORE_BACKEND and registers
// cleanup of whatever connection it opened.
func ProvideKV(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (store.KV, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory storage, state is lost on restart")
		return store.NewMemoryKV(), nil

	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
		defer cancel()
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return rdb.Close() }})
		return repository.NewRedisKV(rdb, constants.RedisKeyPrefix, logger), nil

	default:
		db, err := database.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return closeDB(db, logger) }})
		return repository.NewSQLiteKV(db, logger), nil
	}
}

func closeDB(db *sql.DB, logger zerolog.Logger) error {
	if err := db.Close(); err != nil {
		logger.Warn().Err(err).Msg("error closing database connection")
		return err
	}
	return nil
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	// storage
	fx.Provide(ProvideKV),
	fx.Provide(store.NewStorage),
	// api client
	fx.Provide(api.NewRiotClient),
	fx.Provide(fx.Annotate(
		func(c *api.RiotClient) *api.RiotClient { return c },
		fx.As(new(lookup.Fetcher)),
	)),
	// svc
	fx.Provide(lookup.NewResolver),
	fx.Provide(service.NewTrackerService),
	// server
	fx.Provide(server.NewProxyServer),
	fx.Provide(server.NewTrackerServer),
)
