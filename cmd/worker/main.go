// The worker binary consumes the handoff task queue: it assigns qualified
// conversations to agents and sends the notification emails, keeping that
// work out of the API's request path.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leadqual_backend/internal/config"
	"leadqual_backend/internal/notification"
	"leadqual_backend/internal/qualification/assignment"
	"leadqual_backend/internal/qualification/service"
	"leadqual_backend/internal/scheduler"
	"leadqual_backend/platform/db"
	"leadqual_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var notifier service.Notifier
	if cfg.EmailEnabled {
		notifier = notification.NewSMTPNotifier(cfg, log)
	} else {
		notifier = notification.NewLogNotifier(log)
		log.Warn("SMTP not configured; agent notifications will only be logged")
	}

	balancer := assignment.NewBalancer(assignment.NewRepository(pool), log)
	handoff := service.NewHandoff(balancer, notifier, log)

	worker, err := scheduler.NewWorker(cfg, handoff, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
