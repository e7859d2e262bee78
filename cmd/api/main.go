package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "rooms_svc/internal/adapters/http_server"
	"rooms_svc/internal/adapters/observability"
	"rooms_svc/internal/adapters/rabbit"
	redisad "rooms_svc/internal/adapters/redis"
	"rooms_svc/internal/app"
	"rooms_svc/internal/shared"
	mongostore "rooms_svc/internal/storage/mongo"
	mysqlrepo "rooms_svc/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	// master store
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("master store connection ok")

	// document store
	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	mdb := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}
	log.Info().Msg("document store connection ok")

	// event bus
	bus, err := rabbit.New(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPRoutingKey)
	if err != nil {
		log.Fatal().Err(err).Msg("amqp connect failed")
	}
	defer bus.Close()

	// deps
	master := mysqlrepo.New(db)
	rooms := mongostore.NewProjectionRepo(mdb)
	ledger := mongostore.NewReservationRepo(mdb)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	publisher := app.NewChangePublisher(master, bus)
	masterSvc := app.NewMasterService(master, publisher)
	queries := app.NewRoomQueryService(rooms, cache, cfg.CacheTTL)
	reservations := app.NewReservationService(ledger, rooms, cache)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Rooms:        queries,
		Reservations: reservations,
		Master:       masterSvc,
		SearchRPS:    cfg.SearchRPS,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
