package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/config"
	"leadqual_backend/internal/events"
	apphttp "leadqual_backend/internal/http"
	"leadqual_backend/internal/http/router"
	"leadqual_backend/internal/notification"
	"leadqual_backend/internal/qualification"
	"leadqual_backend/internal/qualification/service"
	"leadqual_backend/internal/scheduler"
	"leadqual_backend/migrations"
	"leadqual_backend/platform/ai/gemini"
	"leadqual_backend/platform/db"
	"leadqual_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg.DatabaseURL, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		log.Error("failed to initialize gemini client", "error", err)
		panic("failed to initialize gemini client: " + err.Error())
	}
	log.Info("gemini client initialized", "model", cfg.GeminiModel)

	var notifier service.Notifier
	if cfg.EmailEnabled {
		notifier = notification.NewSMTPNotifier(cfg, log)
		log.Info("email notifications enabled", "smtp_host", cfg.SMTPHost)
	} else {
		notifier = notification.NewLogNotifier(log)
		log.Warn("SMTP not configured; agent notifications will only be logged")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	qualificationModule := qualification.New(cfg, pool, model, eventBus, notifier, log)

	// Qualified leads hand off through the task queue when Redis is
	// configured, inline otherwise.
	handoffClient, closeHandoffClient := initHandoffScheduler(cfg, log)
	if closeHandoffClient != nil {
		defer closeHandoffClient()
	}
	registerHandoff(eventBus, handoffClient, qualificationModule.Handoff, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			qualificationModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	log.Info("server listening", "addr", cfg.HTTPAddr)
	if err := runServer(ctx, log, srv); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

// runServer serves until the context is cancelled, then drains in-flight
// requests before returning.
func runServer(ctx context.Context, log *logger.Logger, srv *http.Server) error {
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// registerHandoff subscribes the qualified-lead event to either the task
// queue or the inline handoff.
func registerHandoff(bus events.Bus, client *scheduler.Client, handoff *service.Handoff, log *logger.Logger) {
	bus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		qualified, ok := event.(events.LeadQualified)
		if !ok {
			return nil
		}

		if client != nil {
			return client.EnqueueLeadHandoff(ctx, scheduler.LeadHandoffPayload{
				ConversationID: qualified.ConversationID.String(),
				OrganizationID: qualified.OrganizationID.String(),
				Score:          qualified.Score,
				Tier:           qualified.Tier,
			})
		}

		_, err := handoff.Run(ctx, qualified.ConversationID, qualified.OrganizationID, qualified.Score, qualified.Tier)
		return err
	}))
}

func initHandoffScheduler(cfg *config.Config, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; lead handoffs run inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize handoff scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
