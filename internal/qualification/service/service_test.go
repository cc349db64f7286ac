package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadqual_backend/internal/events"
	"leadqual_backend/internal/qualification/domain"
	"leadqual_backend/internal/qualification/extractor"
	"leadqual_backend/internal/qualification/repository"
	"leadqual_backend/internal/qualification/scoring"
	"leadqual_backend/platform/logger"
)

func testLogger() *logger.Logger { return logger.New("test") }

type fakeStore struct {
	facts     map[uuid.UUID]domain.FactRecord
	turns     []domain.Turn
	usage     []repository.UsageRecord
	completed map[uuid.UUID]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		facts:     map[uuid.UUID]domain.FactRecord{},
		completed: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeStore) EnsureConversation(_ context.Context, conversationID, orgID uuid.UUID) (repository.Conversation, error) {
	return repository.Conversation{ID: conversationID, OrganizationID: orgID}, nil
}

func (f *fakeStore) AppendTurn(_ context.Context, turn domain.Turn) error {
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeStore) RecentTurns(_ context.Context, conversationID uuid.UUID, limit int) ([]domain.Turn, error) {
	var out []domain.Turn
	for _, t := range f.turns {
		if t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeStore) GetFactRecord(_ context.Context, conversationID uuid.UUID) (domain.FactRecord, error) {
	return f.facts[conversationID], nil
}

func (f *fakeStore) SaveFactRecord(_ context.Context, conversationID uuid.UUID, facts domain.FactRecord) error {
	f.facts[conversationID] = facts
	return nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, conversationID uuid.UUID, at time.Time) error {
	f.completed[conversationID] = at
	current := f.facts[conversationID]
	current.CompletedAt = &at
	f.facts[conversationID] = current
	return nil
}

func (f *fakeStore) RecordUsage(_ context.Context, usage repository.UsageRecord) error {
	f.usage = append(f.usage, usage)
	return nil
}

type fakeExtractor struct {
	result extractor.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ uuid.UUID, _ []domain.Turn, prior domain.FactRecord, _ string) (extractor.Result, error) {
	f.calls++
	if f.err != nil {
		return extractor.Result{Facts: prior}, f.err
	}
	return f.result, nil
}

type fakeRubrics struct{}

func (fakeRubrics) Resolve(_ context.Context, _ uuid.UUID) (scoring.RubricConfig, string, error) {
	return scoring.DefaultRubric(), "default rubric", nil
}

// recordingBus runs handlers synchronously so tests can assert on published
// events without sleeping.
type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func strPtr(s string) *string { return &s }

func completeFacts() domain.FactRecord {
	return domain.FactRecord{
		Budget:    strPtr("$20-25M"),
		Authority: strPtr("sole decision maker"),
		Need:      strPtr("immediate need, relocating"),
		Timeline:  strPtr("this_month"),
		Contact: domain.Contact{
			FullName: strPtr("Jane Miller"),
			Phone:    strPtr("+12024561414"),
			Email:    strPtr("jane@example.com"),
		},
	}
}

func TestHandleTurnAsksNextQuestion(t *testing.T) {
	store := newFakeStore()
	ext := &fakeExtractor{result: extractor.Result{
		Facts: domain.FactRecord{Budget: strPtr("$2M")},
	}}
	bus := &recordingBus{}
	svc := New(store, ext, fakeRubrics{}, bus, testLogger(), 12)
	conversationID := uuid.New()

	result, err := svc.HandleTurn(context.Background(), conversationID, uuid.New(), "around two million")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}

	if result.Completed {
		t.Fatal("conversation must not complete with only a budget")
	}
	if result.Step != domain.StepAuthority {
		t.Errorf("step = %s, want authority", result.Step)
	}
	if result.Reply != domain.StepAuthority.Question() {
		t.Errorf("reply = %q, want the authority question", result.Reply)
	}
	if got := store.facts[conversationID]; got.Budget == nil || *got.Budget != "$2M" {
		t.Error("merged facts were not persisted")
	}

	// user turn plus assistant question
	if len(store.turns) != 2 {
		t.Fatalf("stored %d turns, want 2", len(store.turns))
	}
	if store.turns[0].Sender != domain.SenderUser || store.turns[1].Sender != domain.SenderAssistant {
		t.Error("turns should record the user message then the assistant reply")
	}
}

func TestHandleTurnDegradesOnExtractionFailure(t *testing.T) {
	store := newFakeStore()
	conversationID := uuid.New()
	prior := domain.FactRecord{Budget: strPtr("$2M")}
	store.facts[conversationID] = prior

	ext := &fakeExtractor{err: fmt.Errorf("%w: upstream timeout", extractor.ErrExtractionFailed)}
	bus := &recordingBus{}
	svc := New(store, ext, fakeRubrics{}, bus, testLogger(), 12)

	result, err := svc.HandleTurn(context.Background(), conversationID, uuid.New(), "gibberish")
	if err != nil {
		t.Fatalf("extraction failure must not surface as an error, got %v", err)
	}

	if !result.Degraded {
		t.Error("result should be marked degraded")
	}
	if result.Step != domain.StepAuthority {
		t.Errorf("step = %s, want the current unanswered step", result.Step)
	}
	if got := store.facts[conversationID]; got.Budget == nil || *got.Budget != "$2M" {
		t.Error("prior facts must survive a failed extraction")
	}
	if len(store.usage) != 1 || store.usage[0].Success {
		t.Error("the failed pass should be recorded as unsuccessful usage")
	}

	var sawFailure bool
	for _, e := range bus.published {
		if _, ok := e.(events.ExtractionFailed); ok {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("an extraction-failed event should be published")
	}
}

func TestHandleTurnCompletesScoresAndPublishes(t *testing.T) {
	store := newFakeStore()
	ext := &fakeExtractor{result: extractor.Result{Facts: completeFacts()}}
	bus := &recordingBus{}
	svc := New(store, ext, fakeRubrics{}, bus, testLogger(), 12)
	conversationID := uuid.New()
	orgID := uuid.New()

	result, err := svc.HandleTurn(context.Background(), conversationID, orgID, "jane@example.com")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}

	if !result.Completed {
		t.Fatal("a fully captured record should complete the conversation")
	}
	if result.Score == nil {
		t.Fatal("completion must carry a score")
	}
	if result.Score.Score != 92 || result.Score.Tier != scoring.TierPriority {
		t.Errorf("score = %d/%s, want 92/priority", result.Score.Score, result.Score.Tier)
	}
	if result.Facts.CompletedAt == nil {
		t.Error("completion timestamp missing from the returned facts")
	}
	if _, ok := store.completed[conversationID]; !ok {
		t.Error("completion was not persisted")
	}

	var qualified *events.LeadQualified
	for _, e := range bus.published {
		if q, ok := e.(events.LeadQualified); ok {
			qualified = &q
		}
	}
	if qualified == nil {
		t.Fatal("a lead-qualified event should be published")
	}
	if qualified.ConversationID != conversationID || qualified.OrganizationID != orgID {
		t.Error("qualified event carries the wrong identifiers")
	}
	if qualified.Score != 92 || qualified.Tier != string(scoring.TierPriority) {
		t.Errorf("event score = %d/%s, want 92/priority", qualified.Score, qualified.Tier)
	}
}

func TestHandleTurnSkipsExtractionWhenCompleted(t *testing.T) {
	store := newFakeStore()
	conversationID := uuid.New()
	facts := completeFacts()
	completedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	facts.CompletedAt = &completedAt
	store.facts[conversationID] = facts

	ext := &fakeExtractor{}
	svc := New(store, ext, fakeRubrics{}, &recordingBus{}, testLogger(), 12)

	result, err := svc.HandleTurn(context.Background(), conversationID, uuid.New(), "one more thing")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}

	if !result.Completed {
		t.Error("a completed conversation should report completed")
	}
	if ext.calls != 0 {
		t.Error("no extraction pass should run after completion")
	}
	if len(store.turns) != 1 {
		t.Error("the message should still be kept in the transcript")
	}
}

func TestFactsReturnsCurrentStep(t *testing.T) {
	store := newFakeStore()
	conversationID := uuid.New()
	store.facts[conversationID] = domain.FactRecord{
		Budget:    strPtr("$2M"),
		Authority: strPtr("sole"),
	}
	svc := New(store, &fakeExtractor{}, fakeRubrics{}, &recordingBus{}, testLogger(), 12)

	facts, step, err := svc.Facts(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Facts() error = %v", err)
	}
	if step != domain.StepNeed {
		t.Errorf("step = %s, want need", step)
	}
	if facts.Budget == nil || *facts.Budget != "$2M" {
		t.Error("facts should round-trip from the store")
	}
}
