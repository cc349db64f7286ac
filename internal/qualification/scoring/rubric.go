// Package scoring computes a weighted lead score from a fact record against a
// configurable rubric and classifies the lead into a tier. Scoring is a pure
// function of (facts, rubric): no clock, no randomness, no I/O.
package scoring

// Tier is the discrete classification derived from a numeric score.
type Tier string

const (
	TierPriority Tier = "priority"
	TierHot      Tier = "hot"
	TierWarm     Tier = "warm"
	TierCold     Tier = "cold"
)

// Category names used as keys into rubric criterion tables.
const (
	CategoryBudget    = "budget"
	CategoryAuthority = "authority"
	CategoryNeed      = "need"
	CategoryTimeline  = "timeline"
	CategoryContact   = "contact"
)

// Categories lists all rubric categories in canonical order.
var Categories = []string{
	CategoryBudget,
	CategoryAuthority,
	CategoryNeed,
	CategoryTimeline,
	CategoryContact,
}

// Weights are the per-category importance on a 0-100 scale. Validation
// requires them to sum to exactly 100.
type Weights struct {
	Budget    int `json:"budget"`
	Authority int `json:"authority"`
	Need      int `json:"need"`
	Timeline  int `json:"timeline"`
	Contact   int `json:"contact"`
}

// Sum returns the total of all five weights.
func (w Weights) Sum() int {
	return w.Budget + w.Authority + w.Need + w.Timeline + w.Contact
}

// ByCategory returns the weight for a category name, 0 for unknown names.
func (w Weights) ByCategory(category string) int {
	switch category {
	case CategoryBudget:
		return w.Budget
	case CategoryAuthority:
		return w.Authority
	case CategoryNeed:
		return w.Need
	case CategoryTimeline:
		return w.Timeline
	case CategoryContact:
		return w.Contact
	default:
		return 0
	}
}

// Thresholds are tier cut-offs on the same 0-100 scale as the score.
// They must be strictly descending: Priority > Hot > Warm.
type Thresholds struct {
	Priority int `json:"priority"`
	Hot      int `json:"hot"`
	Warm     int `json:"warm"`
}

// Value is the normalized form of a fact that predicates evaluate against.
// Budget facts normalize to a number; everything else normalizes to a tag.
type Value struct {
	Number *float64
	Tag    string
}

// Predicate decides whether a criterion applies to a fact value.
// Two variants exist: numeric range match (budget) and exact tag match
// (authority, need, timeline, contact). The engine does not special-case
// budget; it only evaluates predicates.
type Predicate interface {
	Matches(v Value) bool
}

// RangePredicate matches numbers in [Min, Max). A nil bound is unbounded.
type RangePredicate struct {
	Min *float64
	Max *float64
}

// Matches reports whether the value's number falls inside the range.
func (p RangePredicate) Matches(v Value) bool {
	if v.Number == nil {
		return false
	}
	n := *v.Number
	if p.Min != nil && n < *p.Min {
		return false
	}
	if p.Max != nil && n >= *p.Max {
		return false
	}
	return true
}

// TagPredicate matches an exact type tag.
type TagPredicate struct {
	Tag string
}

// Matches reports whether the value carries exactly this tag.
func (p TagPredicate) Matches(v Value) bool {
	return v.Tag != "" && v.Tag == p.Tag
}

// Criterion is one row in a category's ordered lookup table.
// Point tables are pre-scaled so category maxima approximate the category's
// weight; this is a repository convention, not an enforced invariant.
type Criterion struct {
	Predicate Predicate
	Points    int
	Label     string
}

// RubricConfig is the compiled, ready-to-evaluate scoring configuration for
// one organization.
type RubricConfig struct {
	Weights    Weights
	Criteria   map[string][]Criterion
	Thresholds Thresholds
}

// ScoreResult is the derived score and tier. It is never persisted apart
// from the fact record snapshot it was computed from.
type ScoreResult struct {
	Score int  `json:"score"`
	Tier  Tier `json:"tier"`
}
