package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

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

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "worker", cfg.LogLevel)

	if cfg.StoreDriver == "memory" {
		log.Fatal().Msg("STORE_DRIVER=memory cannot be shared with the API; run the API with EMBED_WORKER instead")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer closeStore()

	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	queue := redisad.NewQueue(rdb, cfg.QueueName)

	mail, err := mailer.FromConfig(cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("mail backend init failed")
	}
	task := app.NewConfirmationTask(store.Bookings(), store.Listings(), mail, cfg.DefaultFromEmail)

	w := worker.New(queue, worker.Options{Concurrency: cfg.Workers, PollTimeout: cfg.PollTimeout})
	w.Handle(domain.TaskSendBookingConfirmation, worker.Confirmation(task))

	log.Info().
		Str("queue", cfg.QueueName).
		Str("mail", cfg.MailBackend).
		Int("workers", cfg.Workers).
		Msg("worker starting")

	if err := w.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker stopped with error")
	}
	log.Info().Msg("worker stopped")
}
