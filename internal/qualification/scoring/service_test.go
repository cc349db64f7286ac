package scoring

import (
	"testing"

	"leadqual_backend/internal/qualification/domain"
)

func strPtr(s string) *string { return &s }

func verifiedContact() domain.Contact {
	return domain.Contact{
		FullName: strPtr("Alex de Jong"),
		Phone:    strPtr("+31612345678"),
		Email:    strPtr("alex@example.com"),
	}
}

// TestScoreDefaultRubricBoundaryExample exercises the documented default
// rubric: $20-25M budget (25), sole decision maker (20), immediate need (20),
// this_month timeline (17), full verified contact (10) = 92, priority tier.
func TestScoreDefaultRubricBoundaryExample(t *testing.T) {
	facts := domain.FactRecord{
		Budget:    strPtr("$20-25M"),
		Authority: strPtr("sole decision maker"),
		Need:      strPtr("immediate"),
		Timeline:  strPtr("this_month"),
		Contact:   verifiedContact(),
	}

	result := Score(facts, DefaultRubric())

	if result.Score != 92 {
		t.Errorf("Score = %d, want 92", result.Score)
	}
	if result.Tier != TierPriority {
		t.Errorf("Tier = %q, want %q", result.Tier, TierPriority)
	}
}

func TestScoreTierClassification(t *testing.T) {
	rubric := DefaultRubric()

	tests := []struct {
		name  string
		facts domain.FactRecord
		want  Tier
	}{
		{
			"empty facts are cold",
			domain.FactRecord{},
			TierCold,
		},
		{
			// 10 + 14 (joint) + 13 (planned) + 8 + 5 (partial) = 50
			"mid facts are warm",
			domain.FactRecord{
				Budget:    strPtr("$500k"),
				Authority: strPtr("with my wife"),
				Need:      strPtr("planned move"),
				Timeline:  strPtr("in six months"),
				Contact:   domain.Contact{FullName: strPtr("Sam Peek")},
			},
			TierWarm,
		},
		{
			// 20 + 20 (sole) + 13 + 12 (three_months) + 10 = 75
			"strong facts are hot",
			domain.FactRecord{
				Budget:    strPtr("$3 million"),
				Authority: strPtr("just me"),
				Need:      strPtr("planned"),
				Timeline:  strPtr("this quarter"),
				Contact:   verifiedContact(),
			},
			TierHot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(tt.facts, rubric)
			if result.Tier != tt.want {
				t.Errorf("Score = %d, Tier = %q, want %q", result.Score, result.Tier, tt.want)
			}
		})
	}
}

// TestScoreDeterministic verifies idempotent re-scoring of the same inputs.
func TestScoreDeterministic(t *testing.T) {
	facts := domain.FactRecord{
		Budget:   strPtr("$1.5M"),
		Need:     strPtr("urgent relocation"),
		Timeline: strPtr("next month"),
		Contact:  verifiedContact(),
	}
	rubric := DefaultRubric()

	first := Score(facts, rubric)
	second := Score(facts, rubric)

	if first != second {
		t.Errorf("Score not deterministic: %+v then %+v", first, second)
	}
}

// TestScoreUnmatchedContributesZero covers the inconsistent-input rule: a
// category the facts cannot satisfy contributes zero, never an error.
func TestScoreUnmatchedContributesZero(t *testing.T) {
	// Unparsable budget and untaggable authority score 0; timeline alone
	// contributes its 17 points.
	facts := domain.FactRecord{
		Budget:    strPtr("no idea yet"),
		Authority: strPtr("whatever you say"),
		Timeline:  strPtr("this_month"),
	}

	result := Score(facts, DefaultRubric())

	if result.Score != 17 {
		t.Errorf("Score = %d, want 17 (only timeline should match)", result.Score)
	}
	if result.Tier != TierCold {
		t.Errorf("Tier = %q, want %q", result.Tier, TierCold)
	}
}

// TestScoreEmptyCriterionCategory covers a rubric whose table omits a
// category present in the facts.
func TestScoreEmptyCriterionCategory(t *testing.T) {
	rubric := DefaultRubric()
	delete(rubric.Criteria, CategoryBudget)

	facts := domain.FactRecord{
		Budget:   strPtr("$5M"),
		Timeline: strPtr("this_month"),
	}

	result := Score(facts, rubric)
	if result.Score != 17 {
		t.Errorf("Score = %d, want 17 (budget category absent from rubric)", result.Score)
	}
}

func TestScoreClampedTo100(t *testing.T) {
	rubric := DefaultRubric()
	// Inflate a table beyond the 0-100 scale.
	rubric.Criteria[CategoryBudget] = []Criterion{
		{Predicate: RangePredicate{}, Points: 500, Label: "everything"},
	}

	facts := domain.FactRecord{Budget: strPtr("$100")}

	result := Score(facts, rubric)
	if result.Score != 100 {
		t.Errorf("Score = %d, want clamp at 100", result.Score)
	}
}

func TestRangePredicateBounds(t *testing.T) {
	tests := []struct {
		name  string
		pred  RangePredicate
		value Value
		want  bool
	}{
		{"inclusive lower bound", RangePredicate{Min: floatPtr(100)}, Value{Number: floatPtr(100)}, true},
		{"exclusive upper bound", RangePredicate{Max: floatPtr(100)}, Value{Number: floatPtr(100)}, false},
		{"unbounded matches anything numeric", RangePredicate{}, Value{Number: floatPtr(-5)}, true},
		{"missing number never matches", RangePredicate{}, Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred.Matches(tt.value); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTagPredicate(t *testing.T) {
	pred := TagPredicate{Tag: "sole"}

	if !pred.Matches(Value{Tag: "sole"}) {
		t.Error("exact tag should match")
	}
	if pred.Matches(Value{Tag: "joint"}) {
		t.Error("different tag should not match")
	}
	if pred.Matches(Value{}) {
		t.Error("empty tag should not match")
	}
}
