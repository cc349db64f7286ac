// Package repository persists conversations, transcripts, fact records, and
// extraction usage for the qualification context.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadqual_backend/internal/qualification/domain"
)

// Conversation is the persistence view of a qualification conversation.
type Conversation struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CreatedAt      time.Time
}

// UsageRecord captures the token spend of one extraction pass.
type UsageRecord struct {
	ConversationID   uuid.UUID
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Success          bool
}

// Store is the persistence surface the qualification service depends on.
type Store interface {
	// EnsureConversation creates the conversation on first contact and
	// returns it either way.
	EnsureConversation(ctx context.Context, conversationID, orgID uuid.UUID) (Conversation, error)

	AppendTurn(ctx context.Context, turn domain.Turn) error
	RecentTurns(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Turn, error)

	// GetFactRecord returns the zero record for a conversation that has
	// no facts yet.
	GetFactRecord(ctx context.Context, conversationID uuid.UUID) (domain.FactRecord, error)
	SaveFactRecord(ctx context.Context, conversationID uuid.UUID, facts domain.FactRecord) error
	MarkCompleted(ctx context.Context, conversationID uuid.UUID, at time.Time) error

	RecordUsage(ctx context.Context, usage UsageRecord) error
}
