// Package extractor pulls BANT facts out of conversation transcripts with an
// LLM. Extraction is best-effort: any model or decoding failure degrades to
// the prior fact record so a conversation never loses state.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadqual_backend/internal/qualification/domain"
	"leadqual_backend/platform/ai/gemini"
	"leadqual_backend/platform/logger"
	"leadqual_backend/platform/phone"
)

// ErrExtractionFailed marks a recoverable extraction failure. Callers keep
// the prior facts and re-ask the current question instead of surfacing an
// error to the lead.
var ErrExtractionFailed = errors.New("fact extraction failed")

// TextModel is the slice of the LLM client extraction needs.
type TextModel interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, gemini.Usage, error)
}

var _ TextModel = (*gemini.Client)(nil)

// Config bounds an extraction pass.
type Config struct {
	// Window caps how many trailing turns of the transcript are sent to
	// the model.
	Window int
	// Timeout bounds a single model call.
	Timeout time.Duration
	// PhoneRegion is the default region for normalizing national-format
	// phone numbers.
	PhoneRegion string
}

// Service runs extraction passes.
type Service struct {
	model TextModel
	cfg   Config
	log   *logger.Logger
}

func NewService(model TextModel, cfg Config, log *logger.Logger) *Service {
	if cfg.Window <= 0 {
		cfg.Window = 12
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Service{model: model, cfg: cfg, log: log}
}

// Result is a completed extraction pass: the merged fact record plus the
// token usage of the model call.
type Result struct {
	Facts domain.FactRecord
	Usage gemini.Usage
}

// Extract runs one pass over the trailing window of the transcript and
// merges what the model found into the prior record. On failure it returns
// the prior record unchanged alongside ErrExtractionFailed.
func (s *Service) Extract(ctx context.Context, conversationID uuid.UUID, turns []domain.Turn, prior domain.FactRecord, rubricDescription string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prompt := buildPrompt(windowTurns(turns, s.cfg.Window), prior, rubricDescription)

	raw, usage, err := s.model.GenerateJSON(ctx, systemPrompt, prompt)
	if err != nil {
		s.log.ExtractionEvent(conversationID.String(), false, usage.TotalTokens, err.Error())
		return Result{Facts: prior, Usage: usage}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	extracted, err := decodePayload(raw)
	if err != nil {
		s.log.ExtractionEvent(conversationID.String(), false, usage.TotalTokens, err.Error())
		return Result{Facts: prior, Usage: usage}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	s.sanitize(&extracted)
	merged := prior.Merge(extracted)
	s.log.ExtractionEvent(conversationID.String(), true, usage.TotalTokens, "")

	return Result{Facts: merged, Usage: usage}, nil
}

// windowTurns keeps the trailing window of the transcript.
func windowTurns(turns []domain.Turn, window int) []domain.Turn {
	if len(turns) <= window {
		return turns
	}
	return turns[len(turns)-window:]
}

type contactPayload struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

type payload struct {
	Budget    *string        `json:"budget"`
	Authority *string        `json:"authority"`
	Need      *string        `json:"need"`
	Timeline  *string        `json:"timeline"`
	Contact   contactPayload `json:"contact"`
}

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// decodePayload parses the model response, tolerating a markdown code fence
// around the JSON body.
func decodePayload(raw string) (domain.FactRecord, error) {
	trimmed := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}

	var p payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return domain.FactRecord{}, fmt.Errorf("decode extraction response: %w", err)
	}

	return domain.FactRecord{
		Budget:    p.Budget,
		Authority: p.Authority,
		Need:      p.Need,
		Timeline:  p.Timeline,
		Contact: domain.Contact{
			FullName: p.Contact.FullName,
			Phone:    p.Contact.Phone,
			Email:    p.Contact.Email,
		},
	}, nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// sanitize normalizes contact fields in place: phones to E.164 and email
// addresses to lowercase. Values that fail validation are dropped so they
// cannot overwrite a good prior value during merge.
func (s *Service) sanitize(extracted *domain.FactRecord) {
	if extracted.Contact.Phone != nil {
		normalized := phone.NormalizeE164(*extracted.Contact.Phone, s.cfg.PhoneRegion)
		extracted.Contact.Phone = &normalized
	}
	if extracted.Contact.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*extracted.Contact.Email))
		if emailRe.MatchString(email) {
			extracted.Contact.Email = &email
		} else {
			extracted.Contact.Email = nil
		}
	}
}
