package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements Directory on Postgres. A member's load is the count
// of assignments not yet released.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Directory = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) OrgMembers(ctx context.Context, orgID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.full_name, m.email, m.role, m.status, m.joined_at,
		       COUNT(ca.conversation_id) AS active_assignments
		FROM organization_members m
		LEFT JOIN conversation_assignments ca
		  ON ca.agent_id = m.id AND ca.released_at IS NULL
		WHERE m.organization_id = $1
		  AND m.role = $2
		  AND m.status = $3
		GROUP BY m.id, m.full_name, m.email, m.role, m.status, m.joined_at
		ORDER BY m.joined_at, m.id`,
		orgID, RoleAgent, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("query organization members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Role, &m.Status, &m.JoinedAt, &m.ActiveAssignments); err != nil {
			return nil, fmt.Errorf("scan organization member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organization members: %w", err)
	}

	return members, nil
}

func (r *Repository) RecordAssignment(ctx context.Context, a Assignment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_assignments (conversation_id, organization_id, agent_id, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (conversation_id) DO UPDATE SET
			agent_id = EXCLUDED.agent_id,
			assigned_at = EXCLUDED.assigned_at,
			released_at = NULL`,
		a.ConversationID, a.OrganizationID, a.AgentID, a.AssignedAt)
	if err != nil {
		return fmt.Errorf("record assignment: %w", err)
	}
	return nil
}
