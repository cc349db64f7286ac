// Package rubric validates, describes, and persists per-organization scoring
// configuration. The stored document form compiles into the scoring engine's
// predicate tables; everything else in the system treats it as read-only.
package rubric

import (
	"leadqual_backend/internal/qualification/scoring"
)

// CriterionInput is one row of a category table in document form. A row with
// a Tag compiles to an exact tag match; otherwise it compiles to a numeric
// range match where a nil bound is unbounded.
type CriterionInput struct {
	Label  string   `json:"label"`
	Points int      `json:"points"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Tag    string   `json:"tag,omitempty"`
}

// RubricConfigInput is the document form of an organization rubric, as
// submitted by administrators and as stored.
type RubricConfigInput struct {
	Weights    scoring.Weights             `json:"weights"`
	Criteria   map[string][]CriterionInput `json:"criteria"`
	Thresholds scoring.Thresholds          `json:"thresholds"`
}

// Compile turns a validated document into the scoring engine's form.
func Compile(input RubricConfigInput) scoring.RubricConfig {
	criteria := make(map[string][]scoring.Criterion, len(input.Criteria))
	for category, rows := range input.Criteria {
		compiled := make([]scoring.Criterion, 0, len(rows))
		for _, row := range rows {
			compiled = append(compiled, scoring.Criterion{
				Predicate: compilePredicate(row),
				Points:    row.Points,
				Label:     row.Label,
			})
		}
		criteria[category] = compiled
	}

	return scoring.RubricConfig{
		Weights:    input.Weights,
		Criteria:   criteria,
		Thresholds: input.Thresholds,
	}
}

func compilePredicate(row CriterionInput) scoring.Predicate {
	if row.Tag != "" {
		return scoring.TagPredicate{Tag: row.Tag}
	}
	return scoring.RangePredicate{Min: row.Min, Max: row.Max}
}

// DefaultDocument is the document form of the system default rubric. It must
// stay in sync with scoring.DefaultRubric; a test enforces the parity.
func DefaultDocument() RubricConfigInput {
	return RubricConfigInput{
		Weights: scoring.DefaultWeights,
		Criteria: map[string][]CriterionInput{
			scoring.CategoryBudget: {
				{Label: "Ultra-prime budget ($10M+)", Points: 25, Min: floatPtr(10_000_000)},
				{Label: "Prime budget ($2M-$10M)", Points: 20, Min: floatPtr(2_000_000), Max: floatPtr(10_000_000)},
				{Label: "Upper-market budget ($750k-$2M)", Points: 15, Min: floatPtr(750_000), Max: floatPtr(2_000_000)},
				{Label: "Mid-market budget ($250k-$750k)", Points: 10, Min: floatPtr(250_000), Max: floatPtr(750_000)},
				{Label: "Entry budget (under $250k)", Points: 5, Max: floatPtr(250_000)},
			},
			scoring.CategoryAuthority: {
				{Label: "Sole decision maker", Points: 20, Tag: "sole"},
				{Label: "Joint decision with partner", Points: 14, Tag: "joint"},
				{Label: "Group or committee decision", Points: 8, Tag: "group"},
			},
			scoring.CategoryNeed: {
				{Label: "Immediate need", Points: 20, Tag: "immediate"},
				{Label: "Planned purchase", Points: 13, Tag: "planned"},
				{Label: "Exploring the market", Points: 6, Tag: "exploring"},
			},
			scoring.CategoryTimeline: {
				{Label: "Ready now", Points: 20, Tag: "immediate"},
				{Label: "Within a month", Points: 17, Tag: "this_month"},
				{Label: "Within three months", Points: 12, Tag: "three_months"},
				{Label: "Within six months", Points: 8, Tag: "six_months"},
				{Label: "No concrete timeline", Points: 4, Tag: "exploring"},
			},
			scoring.CategoryContact: {
				{Label: "Full verified contact details", Points: 10, Tag: scoring.ContactTagFullVerified},
				{Label: "Full contact details", Points: 8, Tag: scoring.ContactTagFull},
				{Label: "Partial contact details", Points: 5, Tag: scoring.ContactTagPartial},
			},
		},
		Thresholds: scoring.DefaultThresholds,
	}
}

func floatPtr(v float64) *float64 { return &v }
