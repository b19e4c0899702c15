package cli

import (
	"context"
	"time"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/config"
	"exam-quiz-service/internal/infra/memory"
	pgstore "exam-quiz-service/internal/infra/postgres"
	infraredis "exam-quiz-service/internal/infra/redis"
	"exam-quiz-service/internal/logging"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// backend is the store, question cache and attempt locker selected by config.
type backend struct {
	store   app.Store
	locker  app.AttemptLocker
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	return logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
}

// openBackend picks postgres when a url is configured and the in-memory store
// otherwise; redis, when configured, backs the question cache and the submit lock.
func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{}

	var store app.Store
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		store = pgstore.NewStore(pool)
	} else {
		log.Warn("postgres not configured, data lives in memory only")
		store = memory.NewStore()
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 5*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.store = app.WithQuestionSource(store, infraredis.NewQuestionCache(client, store, cacheTTL))
		b.locker = infraredis.NewAttemptLocker(client)
	} else {
		b.store = app.WithQuestionSource(store, memory.NewQuestionCache(store, cacheTTL))
		b.locker = memory.NewAttemptLocker()
	}
	return b, nil
}
