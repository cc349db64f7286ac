// Package assignment routes freshly qualified conversations to the
// organization's human agents, keeping the load spread even.
package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadqual_backend/platform/logger"
)

const (
	RoleAgent     = "agent"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleAIAgent   = "ai-agent"

	StatusActive = "active"
)

// Member is one organization member as the balancer sees them: identity,
// eligibility attributes, and current open-assignment load.
type Member struct {
	ID                uuid.UUID
	FullName          string
	Email             string
	Role              string
	Status            string
	JoinedAt          time.Time
	ActiveAssignments int
}

// Assignment links a conversation to the agent who owns it.
type Assignment struct {
	ConversationID uuid.UUID
	OrganizationID uuid.UUID
	AgentID        uuid.UUID
	AssignedAt     time.Time
}

// Directory is the persistence surface the balancer needs.
type Directory interface {
	OrgMembers(ctx context.Context, orgID uuid.UUID) ([]Member, error)
	RecordAssignment(ctx context.Context, a Assignment) error
}

// Balancer picks the least-loaded eligible agent for each handoff.
type Balancer struct {
	dir Directory
	log *logger.Logger
}

func NewBalancer(dir Directory, log *logger.Logger) *Balancer {
	return &Balancer{dir: dir, log: log}
}

// Assign picks an agent for the conversation and records the assignment.
// Only active members with the agent role are eligible; admins, moderators,
// and AI agents never receive leads. When the organization has no eligible
// agent the conversation stays unassigned and Assign returns (nil, nil).
func (b *Balancer) Assign(ctx context.Context, conversationID, orgID uuid.UUID) (*Member, error) {
	members, err := b.dir.OrgMembers(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list organization members: %w", err)
	}

	chosen := pickLeastLoaded(members)
	if chosen == nil {
		b.log.Warn("no eligible agents, conversation left unassigned",
			"conversation_id", conversationID.String(),
			"organization_id", orgID.String())
		return nil, nil
	}

	err = b.dir.RecordAssignment(ctx, Assignment{
		ConversationID: conversationID,
		OrganizationID: orgID,
		AgentID:        chosen.ID,
		AssignedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record assignment: %w", err)
	}

	b.log.Info("conversation assigned",
		"conversation_id", conversationID.String(),
		"agent_id", chosen.ID.String(),
		"active_assignments", chosen.ActiveAssignments)

	return chosen, nil
}

// pickLeastLoaded returns the eligible member with the fewest open
// assignments. Ties break on earliest join date, then on member ID, so the
// choice is stable for identical inputs.
func pickLeastLoaded(members []Member) *Member {
	var best *Member
	for i := range members {
		m := &members[i]
		if m.Role != RoleAgent || m.Status != StatusActive {
			continue
		}
		if best == nil || outranks(m, best) {
			best = m
		}
	}
	return best
}

func outranks(a, b *Member) bool {
	if a.ActiveAssignments != b.ActiveAssignments {
		return a.ActiveAssignments < b.ActiveAssignments
	}
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	return a.ID.String() < b.ID.String()
}
