// Package transport defines the request and response shapes of the
// qualification HTTP API.
package transport

import (
	"time"

	"leadqual_backend/internal/qualification/domain"
	"leadqual_backend/internal/qualification/rubric"
)

// TurnRequest is an inbound lead message.
type TurnRequest struct {
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
	Message        string `json:"message" validate:"required,min=1,max=4000"`
}

// ContactResponse mirrors the contact sub-record. Missing fields render as
// null so clients can tell "not captured" from "empty".
type ContactResponse struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

// FactsResponse is the current fact record plus sequencer position.
type FactsResponse struct {
	Budget      *string         `json:"budget"`
	Authority   *string         `json:"authority"`
	Need        *string         `json:"need"`
	Timeline    *string         `json:"timeline"`
	Contact     ContactResponse `json:"contact"`
	CurrentStep string          `json:"currentStep"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// ScoreResponse is the rubric outcome for a completed conversation.
type ScoreResponse struct {
	Score int    `json:"score"`
	Tier  string `json:"tier"`
}

// TurnResponse is the assistant's side of a processed turn.
type TurnResponse struct {
	Reply     string         `json:"reply"`
	Step      string         `json:"step"`
	Completed bool           `json:"completed"`
	Degraded  bool           `json:"degraded,omitempty"`
	Facts     FactsResponse  `json:"facts"`
	Score     *ScoreResponse `json:"score,omitempty"`
}

// RubricRequest replaces an organization's rubric.
type RubricRequest struct {
	UpdatedBy string                   `json:"updatedBy" validate:"required,uuid"`
	Document  rubric.RubricConfigInput `json:"document" validate:"required"`
}

// RubricResponse returns a stored (or default) rubric with its rendered
// description.
type RubricResponse struct {
	Document    rubric.RubricConfigInput `json:"document"`
	Description string                   `json:"description"`
	Default     bool                     `json:"default"`
}

// AssignmentResponse reports the handoff outcome.
type AssignmentResponse struct {
	Assigned  bool    `json:"assigned"`
	AgentID   *string `json:"agentId,omitempty"`
	AgentName *string `json:"agentName,omitempty"`
}

// NewFactsResponse maps the domain record to its wire form.
func NewFactsResponse(facts domain.FactRecord, step domain.Step) FactsResponse {
	return FactsResponse{
		Budget:    facts.Budget,
		Authority: facts.Authority,
		Need:      facts.Need,
		Timeline:  facts.Timeline,
		Contact: ContactResponse{
			FullName: facts.Contact.FullName,
			Phone:    facts.Contact.Phone,
			Email:    facts.Contact.Email,
		},
		CurrentStep: string(step),
		Completed:   step == domain.StepComplete,
		CompletedAt: facts.CompletedAt,
	}
}
