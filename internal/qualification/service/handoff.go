package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"leadqual_backend/internal/qualification/assignment"
	"leadqual_backend/platform/logger"
)

// Assigner picks an agent for a qualified conversation.
type Assigner interface {
	Assign(ctx context.Context, conversationID, orgID uuid.UUID) (*assignment.Member, error)
}

// Notifier tells an agent about a lead they just received.
type Notifier interface {
	LeadAssigned(ctx context.Context, agent assignment.Member, conversationID uuid.UUID, score int, tier string) error
}

// Handoff moves a qualified lead to a human agent. It runs either inline
// behind the event bus or inside the task worker, depending on deployment.
type Handoff struct {
	assigner Assigner
	notifier Notifier
	log      *logger.Logger
}

func NewHandoff(assigner Assigner, notifier Notifier, log *logger.Logger) *Handoff {
	return &Handoff{assigner: assigner, notifier: notifier, log: log}
}

// Run assigns the conversation and notifies the chosen agent, returning the
// agent or nil when no one is eligible. A notification failure is logged but
// does not undo the assignment; an empty agent pool is not an error.
func (h *Handoff) Run(ctx context.Context, conversationID, orgID uuid.UUID, score int, tier string) (*assignment.Member, error) {
	agent, err := h.assigner.Assign(ctx, conversationID, orgID)
	if err != nil {
		return nil, fmt.Errorf("assign qualified lead: %w", err)
	}
	if agent == nil {
		return nil, nil
	}

	if h.notifier != nil {
		if err := h.notifier.LeadAssigned(ctx, *agent, conversationID, score, tier); err != nil {
			h.log.Warn("lead assignment notification failed",
				"conversation_id", conversationID.String(),
				"agent_id", agent.ID.String(),
				"error", err.Error())
		}
	}

	return agent, nil
}
