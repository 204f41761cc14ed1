package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "alx_travel/internal/adapters/http_server"
	"alx_travel/internal/adapters/mailer"
	"alx_travel/internal/adapters/observability"
	redisad "alx_travel/internal/adapters/redis"
	"alx_travel/internal/app"
	"alx_travel/internal/domain"
	"alx_travel/internal/shared"
	"alx_travel/internal/storage"
	"alx_travel/internal/worker"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer closeStore()

	// deps
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// bookings still succeed; confirmations are dropped until redis is back
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
	}
	cache := redisad.NewCache(rdb)
	queue := redisad.NewQueue(rdb, cfg.QueueName)

	listings := app.NewListingService(store.Listings(), store.Bookings(), cache, cfg.CacheTTL)
	bookings := app.NewBookingService(store.Bookings(), store.Listings(), queue)
	reviews := app.NewReviewService(store.Reviews(), store.Listings())

	// http
	srv := server.New(server.Options{CORSOrigins: cfg.CORSOrigins})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Listings: listings, Bookings: bookings, Reviews: reviews})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})

	if cfg.EmbedWorker {
		mail, err := mailer.FromConfig(cfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("mail backend init failed")
		}
		task := app.NewConfirmationTask(store.Bookings(), store.Listings(), mail, cfg.DefaultFromEmail)
		w := worker.New(queue, worker.Options{Concurrency: cfg.Workers, PollTimeout: cfg.PollTimeout})
		w.Handle(domain.TaskSendBookingConfirmation, worker.Confirmation(task))
		log.Info().Int("workers", cfg.Workers).Msg("embedded task worker starting")
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
