package rubric

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/qualification/scoring"
)

// StoredRubric is a persisted organization rubric with its rendered summary.
type StoredRubric struct {
	OrganizationID uuid.UUID         `json:"organization_id"`
	Document       RubricConfigInput `json:"document"`
	Description    string            `json:"description"`
	UpdatedBy      uuid.UUID         `json:"updated_by"`
}

// Store persists rubric documents keyed by organization. Readers that find no
// stored document fall back to the system default.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Save replaces an organization's rubric in a single upsert so concurrent
// readers observe either the previous document or the new one, never a blend.
// Callers must validate the document first.
func (s *Store) Save(ctx context.Context, orgID, updatedBy uuid.UUID, input RubricConfigInput) (string, error) {
	description, err := Describe(input)
	if err != nil {
		return "", err
	}

	doc, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal rubric document: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO rubric_configs (organization_id, document, description, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (organization_id) DO UPDATE SET
			document = EXCLUDED.document,
			description = EXCLUDED.description,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()`,
		orgID, doc, description, updatedBy)
	if err != nil {
		return "", fmt.Errorf("save rubric config: %w", err)
	}

	return description, nil
}

// Get returns the stored rubric for an organization, or nil when none exists.
func (s *Store) Get(ctx context.Context, orgID uuid.UUID) (*StoredRubric, error) {
	var (
		stored StoredRubric
		doc    []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT organization_id, document, description, updated_by
		FROM rubric_configs
		WHERE organization_id = $1`,
		orgID).Scan(&stored.OrganizationID, &doc, &stored.Description, &stored.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rubric config: %w", err)
	}

	if err := json.Unmarshal(doc, &stored.Document); err != nil {
		return nil, fmt.Errorf("decode rubric document: %w", err)
	}
	return &stored, nil
}

// Resolve returns the compiled rubric and its description for an
// organization, falling back to the system default when nothing is stored.
func (s *Store) Resolve(ctx context.Context, orgID uuid.UUID) (scoring.RubricConfig, string, error) {
	stored, err := s.Get(ctx, orgID)
	if err != nil {
		return scoring.RubricConfig{}, "", err
	}
	if stored == nil {
		defaultDoc := DefaultDocument()
		description, err := Describe(defaultDoc)
		if err != nil {
			return scoring.RubricConfig{}, "", err
		}
		return scoring.DefaultRubric(), description, nil
	}
	return Compile(stored.Document), stored.Description, nil
}
