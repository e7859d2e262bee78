package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"rooms_svc/internal/adapters/observability"
	"rooms_svc/internal/adapters/rabbit"
	redisad "rooms_svc/internal/adapters/redis"
	"rooms_svc/internal/app"
	"rooms_svc/internal/domain"
	"rooms_svc/internal/shared"
	mongostore "rooms_svc/internal/storage/mongo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(observability.InitRegistry()))

	log.Info().
		Str("queue", cfg.AMQPQueue).
		Int("workers", cfg.Workers).
		Msg("projection synchronizer starting")

	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	mdb := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	bus, err := rabbit.New(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPRoutingKey)
	if err != nil {
		log.Fatal().Err(err).Msg("amqp connect failed")
	}
	defer bus.Close()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	sync := app.NewSynchronizer(
		mongostore.NewProjectionRepo(mdb),
		mongostore.NewProcessedEvents(mdb),
		cache,
	)

	// Bound in-flight handlers; the queue's FIFO order is preserved per
	// delivery, duplicates and reordering are handled by the idempotent
	// patches.
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	handle := func(ctx context.Context, ev domain.RoomEvent) error {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer sem.Release(1)
		return sync.Handle(ctx, ev)
	}

	if err := bus.Consume(ctx, cfg.Prefetch, handle); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("projection synchronizer stopped")
}
