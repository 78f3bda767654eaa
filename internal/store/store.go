// Package store selects and opens the book repository backend.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
)

// Open builds the repository selected by STORE_DRIVER.
// The returned cleanup releases the underlying connection or file.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (book.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			log.Info("database migrations applied")
		}
		log.Info("database connection OK", zap.String("dsn", database.RedactDSN(cfg.DatabaseDSN)))
		return book.NewPostgresRepo(pool, cfg.DBTimeout), pool.Close, nil

	case config.DriverBolt:
		db, err := database.OpenBolt(cfg.BoltPath, cfg.BoltTimeout)
		if err != nil {
			return nil, nil, err
		}
		repo, err := book.NewBoltRepo(db, book.DefaultBoltBucket)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("bolt store opened", zap.String("path", cfg.BoltPath))
		return repo, func() { _ = db.Close() }, nil

	case config.DriverRedis:
		client, err := database.OpenRedis(ctx, database.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis store connected", zap.String("addr", cfg.RedisAddr))
		return book.NewRedisRepo(client), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
