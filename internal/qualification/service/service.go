// Package service orchestrates a qualification conversation turn: persist the
// message, run extraction, advance the question sequence, and score and hand
// off the lead once the record is complete.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadqual_backend/internal/events"
	"leadqual_backend/internal/qualification/domain"
	"leadqual_backend/internal/qualification/extractor"
	"leadqual_backend/internal/qualification/repository"
	"leadqual_backend/internal/qualification/scoring"
	"leadqual_backend/platform/logger"
)

// closingMessage is sent once the fact record is complete.
const closingMessage = "Thank you, that's everything I need for now. One of our agents will be in touch with you shortly."

// Extractor is the slice of the extraction service the orchestrator uses.
type Extractor interface {
	Extract(ctx context.Context, conversationID uuid.UUID, turns []domain.Turn, prior domain.FactRecord, rubricDescription string) (extractor.Result, error)
}

// RubricResolver yields the organization's compiled rubric and its
// natural-language description.
type RubricResolver interface {
	Resolve(ctx context.Context, orgID uuid.UUID) (scoring.RubricConfig, string, error)
}

// Service runs the turn pipeline.
type Service struct {
	store   repository.Store
	extract Extractor
	rubrics RubricResolver
	bus     events.Bus
	log     *logger.Logger
	window  int
	now     func() time.Time
}

func New(store repository.Store, extract Extractor, rubrics RubricResolver, bus events.Bus, log *logger.Logger, window int) *Service {
	if window <= 0 {
		window = 12
	}
	return &Service{
		store:   store,
		extract: extract,
		rubrics: rubrics,
		bus:     bus,
		log:     log,
		window:  window,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// TurnResult is what a processed turn yields back to the transport layer.
type TurnResult struct {
	Facts     domain.FactRecord
	Step      domain.Step
	Reply     string
	Completed bool
	Degraded  bool
	Score     *scoring.ScoreResult
}

// HandleTurn processes one inbound lead message. Extraction failures degrade:
// the turn is kept, the facts stay as they were, and the current question is
// asked again. Once every fact is captured the record is scored, marked
// complete, and a qualified-lead event is published for handoff.
func (s *Service) HandleTurn(ctx context.Context, conversationID, orgID uuid.UUID, message string) (TurnResult, error) {
	if _, err := s.store.EnsureConversation(ctx, conversationID, orgID); err != nil {
		return TurnResult{}, err
	}

	prior, err := s.store.GetFactRecord(ctx, conversationID)
	if err != nil {
		return TurnResult{}, err
	}

	if err := s.store.AppendTurn(ctx, domain.Turn{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         domain.SenderUser,
		Text:           message,
		CreatedAt:      s.now(),
	}); err != nil {
		return TurnResult{}, err
	}

	// A completed conversation accepts the message for the transcript but
	// runs no further extraction.
	if prior.CompletedAt != nil {
		return TurnResult{
			Facts:     prior,
			Step:      domain.StepComplete,
			Reply:     closingMessage,
			Completed: true,
		}, nil
	}

	rubric, description, err := s.rubrics.Resolve(ctx, orgID)
	if err != nil {
		return TurnResult{}, err
	}

	turns, err := s.store.RecentTurns(ctx, conversationID, s.window)
	if err != nil {
		return TurnResult{}, err
	}

	result, err := s.extract.Extract(ctx, conversationID, turns, prior, description)
	s.recordUsage(ctx, conversationID, result, err == nil)
	if err != nil {
		if !errors.Is(err, extractor.ErrExtractionFailed) {
			return TurnResult{}, err
		}
		return s.degrade(ctx, conversationID, prior, err)
	}

	facts := result.Facts
	if err := s.store.SaveFactRecord(ctx, conversationID, facts); err != nil {
		return TurnResult{}, err
	}

	step := domain.NextStep(facts)
	if step != domain.StepComplete {
		return s.reply(ctx, conversationID, TurnResult{
			Facts: facts,
			Step:  step,
			Reply: step.Question(),
		})
	}

	return s.complete(ctx, conversationID, orgID, facts, rubric)
}

// degrade keeps the conversation moving after a failed extraction pass.
func (s *Service) degrade(ctx context.Context, conversationID uuid.UUID, prior domain.FactRecord, cause error) (TurnResult, error) {
	s.bus.Publish(ctx, events.ExtractionFailed{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conversationID,
		Reason:         cause.Error(),
	})

	step := domain.NextStep(prior)
	return s.reply(ctx, conversationID, TurnResult{
		Facts:    prior,
		Step:     step,
		Reply:    step.Question(),
		Degraded: true,
	})
}

// complete stamps the record, scores it, and announces the qualified lead.
func (s *Service) complete(ctx context.Context, conversationID, orgID uuid.UUID, facts domain.FactRecord, rubric scoring.RubricConfig) (TurnResult, error) {
	completedAt := s.now()
	if err := s.store.MarkCompleted(ctx, conversationID, completedAt); err != nil {
		return TurnResult{}, err
	}
	facts.CompletedAt = &completedAt

	score := scoring.Score(facts, rubric)
	s.log.Info("lead qualified",
		"conversation_id", conversationID.String(),
		"score", score.Score,
		"tier", string(score.Tier))

	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conversationID,
		OrganizationID: orgID,
		Score:          score.Score,
		Tier:           string(score.Tier),
	})

	return s.reply(ctx, conversationID, TurnResult{
		Facts:     facts,
		Step:      domain.StepComplete,
		Reply:     closingMessage,
		Completed: true,
		Score:     &score,
	})
}

// reply appends the assistant's side of the turn before returning.
func (s *Service) reply(ctx context.Context, conversationID uuid.UUID, result TurnResult) (TurnResult, error) {
	err := s.store.AppendTurn(ctx, domain.Turn{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         domain.SenderAssistant,
		Text:           result.Reply,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("append reply turn: %w", err)
	}
	return result, nil
}

func (s *Service) recordUsage(ctx context.Context, conversationID uuid.UUID, result extractor.Result, success bool) {
	err := s.store.RecordUsage(ctx, repository.UsageRecord{
		ConversationID:   conversationID,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
		Success:          success,
	})
	if err != nil {
		s.log.DatabaseError("record extraction usage", err)
	}
}

// Facts returns the current fact record and sequencer position for a
// conversation.
func (s *Service) Facts(ctx context.Context, conversationID uuid.UUID) (domain.FactRecord, domain.Step, error) {
	facts, err := s.store.GetFactRecord(ctx, conversationID)
	if err != nil {
		return domain.FactRecord{}, "", err
	}
	return facts, domain.NextStep(facts), nil
}
