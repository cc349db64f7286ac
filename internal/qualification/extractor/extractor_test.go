package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"leadqual_backend/internal/qualification/domain"
	"leadqual_backend/platform/ai/gemini"
	"leadqual_backend/platform/logger"
)

type fakeModel struct {
	response string
	usage    gemini.Usage
	err      error

	lastSystem string
	lastPrompt string
	calls      int
}

func (f *fakeModel) GenerateJSON(_ context.Context, system, prompt string) (string, gemini.Usage, error) {
	f.calls++
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.response, f.usage, f.err
}

func newService(model TextModel) *Service {
	return NewService(model, Config{Window: 12, PhoneRegion: "US"}, logger.New("test"))
}

func userTurn(text string) domain.Turn {
	return domain.Turn{ID: uuid.New(), Sender: domain.SenderUser, Text: text}
}

func assistantTurn(text string) domain.Turn {
	return domain.Turn{ID: uuid.New(), Sender: domain.SenderAssistant, Text: text}
}

func strPtr(s string) *string { return &s }

func TestExtractMergesIntoPrior(t *testing.T) {
	model := &fakeModel{
		response: `{"budget": null, "authority": "sole decision maker", "need": null, "timeline": null,
			"contact": {"full_name": null, "phone": null, "email": null}}`,
		usage: gemini.Usage{TotalTokens: 240},
	}
	svc := newService(model)
	prior := domain.FactRecord{Budget: strPtr("$2M")}

	result, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("It's just me deciding")}, prior, "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if result.Facts.Budget == nil || *result.Facts.Budget != "$2M" {
		t.Error("null budget in response must not clear the prior value")
	}
	if result.Facts.Authority == nil || *result.Facts.Authority != "sole decision maker" {
		t.Errorf("authority = %v, want sole decision maker", result.Facts.Authority)
	}
	if result.Usage.TotalTokens != 240 {
		t.Errorf("usage = %d, want 240", result.Usage.TotalTokens)
	}
}

func TestExtractToleratesCodeFence(t *testing.T) {
	model := &fakeModel{
		response: "```json\n{\"budget\": \"$500k\", \"authority\": null, \"need\": null, \"timeline\": null, \"contact\": {\"full_name\": null, \"phone\": null, \"email\": null}}\n```",
	}
	svc := newService(model)

	result, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("around 500k")}, domain.FactRecord{}, "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Facts.Budget == nil || *result.Facts.Budget != "$500k" {
		t.Errorf("budget = %v, want $500k", result.Facts.Budget)
	}
}

func TestExtractModelFailureKeepsPrior(t *testing.T) {
	model := &fakeModel{err: errors.New("upstream timeout")}
	svc := newService(model)
	prior := domain.FactRecord{Budget: strPtr("$2M"), Timeline: strPtr("next month")}

	result, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("hello")}, prior, "")

	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
	if result.Facts != prior {
		t.Error("prior facts must be returned unchanged on model failure")
	}
}

func TestExtractMalformedJSONKeepsPrior(t *testing.T) {
	model := &fakeModel{response: "I could not find any facts."}
	svc := newService(model)
	prior := domain.FactRecord{Need: strPtr("relocating for work")}

	result, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("hello")}, prior, "")

	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
	if result.Facts != prior {
		t.Error("prior facts must be returned unchanged on a malformed response")
	}
}

func TestExtractNormalizesContact(t *testing.T) {
	model := &fakeModel{
		response: `{"budget": null, "authority": null, "need": null, "timeline": null,
			"contact": {"full_name": "Jane Miller", "phone": "(202) 456-1414", "email": "Jane.Miller@Example.COM"}}`,
	}
	svc := newService(model)

	result, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("jane miller, (202) 456-1414, Jane.Miller@Example.COM")},
		domain.FactRecord{}, "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got := result.Facts.Contact.Phone; got == nil || *got != "+12024561414" {
		t.Errorf("phone = %v, want +12024561414", got)
	}
	if got := result.Facts.Contact.Email; got == nil || *got != "jane.miller@example.com" {
		t.Errorf("email = %v, want lowercase form", got)
	}
}

func TestExtractDropsInvalidEmail(t *testing.T) {
	model := &fakeModel{
		response: `{"budget": null, "authority": null, "need": null, "timeline": null,
			"contact": {"full_name": null, "phone": null, "email": "not-an-email"}}`,
	}
	svc := newService(model)
	prior := domain.FactRecord{Contact: domain.Contact{Email: strPtr("good@example.com")}}

	result, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("not-an-email")}, prior, "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := result.Facts.Contact.Email; got == nil || *got != "good@example.com" {
		t.Errorf("email = %v, an invalid extraction must not clobber the prior value", got)
	}
}

func TestPromptWindowsTranscript(t *testing.T) {
	model := &fakeModel{
		response: `{"budget": null, "authority": null, "need": null, "timeline": null,
			"contact": {"full_name": null, "phone": null, "email": null}}`,
	}
	svc := NewService(model, Config{Window: 3, PhoneRegion: "US"}, logger.New("test"))

	turns := []domain.Turn{
		userTurn("ancient message"),
		assistantTurn("What budget do you have in mind?"),
		userTurn("somewhere around two million"),
		userTurn("and I need to move fast"),
	}
	if _, err := svc.Extract(context.Background(), uuid.New(), turns, domain.FactRecord{}, ""); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if strings.Contains(model.lastPrompt, "ancient message") {
		t.Error("turns outside the window must not reach the model")
	}
	if !strings.Contains(model.lastPrompt, "Assistant: What budget do you have in mind?") {
		t.Error("assistant turns inside the window should appear as context")
	}
	if !strings.Contains(model.lastPrompt, "Lead: and I need to move fast") {
		t.Error("user turns inside the window should appear attributed to the lead")
	}
}

func TestPromptCarriesPriorFactsAndRubric(t *testing.T) {
	model := &fakeModel{
		response: `{"budget": null, "authority": null, "need": null, "timeline": null,
			"contact": {"full_name": null, "phone": null, "email": null}}`,
	}
	svc := newService(model)
	prior := domain.FactRecord{Budget: strPtr("$2M")}

	_, err := svc.Extract(context.Background(), uuid.New(),
		[]domain.Turn{userTurn("hi")}, prior, "Budget above $2M scores highest.")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(model.lastPrompt, "budget: $2M") {
		t.Error("prompt should list already-known facts")
	}
	if !strings.Contains(model.lastPrompt, "Budget above $2M scores highest.") {
		t.Error("prompt should include the rubric description when present")
	}
	if !strings.Contains(model.lastSystem, "null unless the lead explicitly stated it") {
		t.Error("system prompt should state the null rule")
	}
}
