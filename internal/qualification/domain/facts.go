// Package domain provides core business rules for the qualification bounded
// context: the BANT fact record, the merge policy, and the question sequencer.
// Everything here is pure and side-effect free.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a conversation turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Sender         Sender
	Text           string
	CreatedAt      time.Time
}

// Contact holds the lead's contact details. Sub-fields fill independently
// and merge at the same granularity as top-level facts.
type Contact struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

// FactRecord is the incrementally-filled qualification state for one
// conversation. A nil field has not been captured yet. Fields are populated
// strictly from user-authored turns.
type FactRecord struct {
	Budget      *string    `json:"budget"`
	Authority   *string    `json:"authority"`
	Need        *string    `json:"need"`
	Timeline    *string    `json:"timeline"`
	Contact     Contact    `json:"contact"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Merge applies an extraction result on top of prior facts. A field already
// populated is never cleared by a later pass: the extracted value wins only
// when it is non-null and non-empty, which the extractor guarantees to mean
// the user explicitly restated it. Contact sub-fields merge independently.
// CompletedAt is owned by the orchestration layer and always carried from
// the prior record.
func (f FactRecord) Merge(extracted FactRecord) FactRecord {
	return FactRecord{
		Budget:    pick(extracted.Budget, f.Budget),
		Authority: pick(extracted.Authority, f.Authority),
		Need:      pick(extracted.Need, f.Need),
		Timeline:  pick(extracted.Timeline, f.Timeline),
		Contact: Contact{
			FullName: pick(extracted.Contact.FullName, f.Contact.FullName),
			Phone:    pick(extracted.Contact.Phone, f.Contact.Phone),
			Email:    pick(extracted.Contact.Email, f.Contact.Email),
		},
		CompletedAt: f.CompletedAt,
	}
}

// IsComplete reports whether every required field, including all contact
// sub-fields, has been captured.
func (f FactRecord) IsComplete() bool {
	return NextStep(f) == StepComplete
}

// pick returns the extracted value when it carries content, otherwise prior.
func pick(extracted, prior *string) *string {
	if extracted == nil {
		return prior
	}
	trimmed := strings.TrimSpace(*extracted)
	if trimmed == "" {
		return prior
	}
	return &trimmed
}
