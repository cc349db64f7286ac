package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/qualification/domain"
)

// Repository implements Store on Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) EnsureConversation(ctx context.Context, conversationID, orgID uuid.UUID) (Conversation, error) {
	var conv Conversation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, organization_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, organization_id, created_at`,
		conversationID, orgID).Scan(&conv.ID, &conv.OrganizationID, &conv.CreatedAt)
	if err != nil {
		return Conversation{}, fmt.Errorf("ensure conversation: %w", err)
	}
	return conv, nil
}

func (r *Repository) AppendTurn(ctx context.Context, turn domain.Turn) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_turns (id, conversation_id, sender, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, turn.ConversationID, string(turn.Sender), turn.Text, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// RecentTurns returns the trailing turns of a conversation in chronological
// order.
func (r *Repository) RecentTurns(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Turn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender, body, created_at
		FROM (
			SELECT id, conversation_id, sender, body, created_at
			FROM conversation_turns
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) trailing
		ORDER BY created_at ASC, id ASC`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var (
			turn   domain.Turn
			sender string
		)
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &sender, &turn.Text, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Sender = domain.Sender(sender)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

func (r *Repository) GetFactRecord(ctx context.Context, conversationID uuid.UUID) (domain.FactRecord, error) {
	var facts domain.FactRecord
	err := r.pool.QueryRow(ctx, `
		SELECT budget, authority, need, timeline,
		       contact_full_name, contact_phone, contact_email, completed_at
		FROM fact_records
		WHERE conversation_id = $1`,
		conversationID).Scan(
		&facts.Budget, &facts.Authority, &facts.Need, &facts.Timeline,
		&facts.Contact.FullName, &facts.Contact.Phone, &facts.Contact.Email,
		&facts.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FactRecord{}, nil
		}
		return domain.FactRecord{}, fmt.Errorf("get fact record: %w", err)
	}
	return facts, nil
}

func (r *Repository) SaveFactRecord(ctx context.Context, conversationID uuid.UUID, facts domain.FactRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO fact_records (
			conversation_id, budget, authority, need, timeline,
			contact_full_name, contact_phone, contact_email, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (conversation_id) DO UPDATE SET
			budget = EXCLUDED.budget,
			authority = EXCLUDED.authority,
			need = EXCLUDED.need,
			timeline = EXCLUDED.timeline,
			contact_full_name = EXCLUDED.contact_full_name,
			contact_phone = EXCLUDED.contact_phone,
			contact_email = EXCLUDED.contact_email,
			updated_at = now()`,
		conversationID, facts.Budget, facts.Authority, facts.Need, facts.Timeline,
		facts.Contact.FullName, facts.Contact.Phone, facts.Contact.Email)
	if err != nil {
		return fmt.Errorf("save fact record: %w", err)
	}
	return nil
}

func (r *Repository) MarkCompleted(ctx context.Context, conversationID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE fact_records
		SET completed_at = $2, updated_at = now()
		WHERE conversation_id = $1 AND completed_at IS NULL`,
		conversationID, at)
	if err != nil {
		return fmt.Errorf("mark conversation completed: %w", err)
	}
	return nil
}

func (r *Repository) RecordUsage(ctx context.Context, usage UsageRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO extraction_usage (
			id, conversation_id, prompt_tokens, completion_tokens, total_tokens, success, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		uuid.New(), usage.ConversationID,
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, usage.Success)
	if err != nil {
		return fmt.Errorf("record extraction usage: %w", err)
	}
	return nil
}
