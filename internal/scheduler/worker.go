package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"leadqual_backend/internal/config"
	"leadqual_backend/internal/qualification/service"
	"leadqual_backend/platform/logger"
)

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handoff *service.Handoff
	log     *logger.Logger
}

func NewWorker(cfg *config.Config, handoff *service.Handoff, log *logger.Logger) (*Worker, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.AsynqConcurrency
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		handoff: handoff,
		log:     log,
	}

	mux.HandleFunc(TaskLeadHandoff, w.handleLeadHandoff)

	return w, nil
}

func (w *Worker) handleLeadHandoff(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadHandoffPayload(task)
	if err != nil {
		return err
	}

	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return err
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	_, err = w.handoff.Run(ctx, conversationID, orgID, payload.Score, payload.Tier)
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
