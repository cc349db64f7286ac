// Package qualification wires the lead qualification bounded context:
// extraction, sequencing, scoring, rubric configuration, and handoff.
package qualification

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/config"
	"leadqual_backend/internal/events"
	apphttp "leadqual_backend/internal/http"
	"leadqual_backend/internal/qualification/assignment"
	"leadqual_backend/internal/qualification/extractor"
	"leadqual_backend/internal/qualification/handler"
	"leadqual_backend/internal/qualification/repository"
	"leadqual_backend/internal/qualification/rubric"
	"leadqual_backend/internal/qualification/service"
	"leadqual_backend/platform/logger"
)

// Module bundles the context's services behind the HTTP Module interface.
type Module struct {
	Service *service.Service
	Handoff *service.Handoff
	Rubrics *rubric.Store

	handler *handler.Handler
}

// New wires the qualification context. The notifier may be nil when email
// delivery is disabled; handoff then assigns without notifying.
func New(cfg *config.Config, pool *pgxpool.Pool, model extractor.TextModel, bus events.Bus, notifier service.Notifier, log *logger.Logger) *Module {
	store := repository.New(pool)
	rubrics := rubric.NewStore(pool)

	extract := extractor.NewService(model, extractor.Config{
		Window:      cfg.ExtractionWindow,
		Timeout:     cfg.ExtractionTimeout,
		PhoneRegion: cfg.DefaultPhoneRegion,
	}, log)

	svc := service.New(store, extract, rubrics, bus, log, cfg.ExtractionWindow)

	balancer := assignment.NewBalancer(assignment.NewRepository(pool), log)
	handoff := service.NewHandoff(balancer, notifier, log)

	return &Module{
		Service: svc,
		Handoff: handoff,
		Rubrics: rubrics,
		handler: handler.New(svc, handoff, rubrics),
	}
}

func (m *Module) Name() string { return "qualification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterConversationRoutes(ctx.V1.Group("/conversations"))
	m.handler.RegisterOrganizationRoutes(ctx.V1.Group("/organizations"))
}

var _ apphttp.Module = (*Module)(nil)
