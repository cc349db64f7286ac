package scoring

import (
	"leadqual_backend/internal/qualification/domain"
)

// Score evaluates the fact record against the rubric. For each category the
// first matching criterion wins and contributes its points directly; absent
// or unmatched facts contribute zero. The total is clamped to [0, 100] and
// classified against the tier thresholds, evaluated high to low.
func Score(facts domain.FactRecord, rubric RubricConfig) ScoreResult {
	total := 0
	for _, category := range Categories {
		total += categoryPoints(rubric.Criteria[category], categoryValue(category, facts))
	}

	score := clampScore(total)
	return ScoreResult{
		Score: score,
		Tier:  classify(score, rubric.Thresholds),
	}
}

// categoryValue normalizes the relevant fact into a predicate-evaluable value.
func categoryValue(category string, facts domain.FactRecord) Value {
	switch category {
	case CategoryBudget:
		if facts.Budget == nil {
			return Value{}
		}
		return Value{Number: ParseBudgetAmount(*facts.Budget)}
	case CategoryAuthority:
		return tagValue(category, facts.Authority)
	case CategoryNeed:
		return tagValue(category, facts.Need)
	case CategoryTimeline:
		return tagValue(category, facts.Timeline)
	case CategoryContact:
		return Value{Tag: ContactTag(facts.Contact)}
	default:
		return Value{}
	}
}

func tagValue(category string, fact *string) Value {
	if fact == nil {
		return Value{}
	}
	return Value{Tag: NormalizeTag(category, *fact)}
}

// categoryPoints returns the points of the first matching criterion.
func categoryPoints(criteria []Criterion, v Value) int {
	for _, criterion := range criteria {
		if criterion.Predicate.Matches(v) {
			return criterion.Points
		}
	}
	return 0
}

func classify(score int, t Thresholds) Tier {
	switch {
	case score >= t.Priority:
		return TierPriority
	case score >= t.Hot:
		return TierHot
	case score >= t.Warm:
		return TierWarm
	default:
		return TierCold
	}
}

func clampScore(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
