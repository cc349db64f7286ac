package scoring

// Default rubric applied when an organization has no stored configuration.
// Point tables are pre-scaled to their category weight by convention; note
// the contact table tops out below its weight, a historical quirk that is
// deliberately preserved rather than corrected.

func floatPtr(v float64) *float64 { return &v }

// DefaultThresholds are the stock tier cut-offs.
var DefaultThresholds = Thresholds{Priority: 85, Hot: 70, Warm: 50}

// DefaultWeights are the stock category weights, summing to 100.
var DefaultWeights = Weights{Budget: 25, Authority: 20, Need: 20, Timeline: 20, Contact: 15}

// DefaultRubric returns the system default rubric.
func DefaultRubric() RubricConfig {
	return RubricConfig{
		Weights: DefaultWeights,
		Criteria: map[string][]Criterion{
			CategoryBudget: {
				{Predicate: RangePredicate{Min: floatPtr(10_000_000)}, Points: 25, Label: "Ultra-prime budget ($10M+)"},
				{Predicate: RangePredicate{Min: floatPtr(2_000_000), Max: floatPtr(10_000_000)}, Points: 20, Label: "Prime budget ($2M-$10M)"},
				{Predicate: RangePredicate{Min: floatPtr(750_000), Max: floatPtr(2_000_000)}, Points: 15, Label: "Upper-market budget ($750k-$2M)"},
				{Predicate: RangePredicate{Min: floatPtr(250_000), Max: floatPtr(750_000)}, Points: 10, Label: "Mid-market budget ($250k-$750k)"},
				{Predicate: RangePredicate{Max: floatPtr(250_000)}, Points: 5, Label: "Entry budget (under $250k)"},
			},
			CategoryAuthority: {
				{Predicate: TagPredicate{Tag: "sole"}, Points: 20, Label: "Sole decision maker"},
				{Predicate: TagPredicate{Tag: "joint"}, Points: 14, Label: "Joint decision with partner"},
				{Predicate: TagPredicate{Tag: "group"}, Points: 8, Label: "Group or committee decision"},
			},
			CategoryNeed: {
				{Predicate: TagPredicate{Tag: "immediate"}, Points: 20, Label: "Immediate need"},
				{Predicate: TagPredicate{Tag: "planned"}, Points: 13, Label: "Planned purchase"},
				{Predicate: TagPredicate{Tag: "exploring"}, Points: 6, Label: "Exploring the market"},
			},
			CategoryTimeline: {
				{Predicate: TagPredicate{Tag: "immediate"}, Points: 20, Label: "Ready now"},
				{Predicate: TagPredicate{Tag: "this_month"}, Points: 17, Label: "Within a month"},
				{Predicate: TagPredicate{Tag: "three_months"}, Points: 12, Label: "Within three months"},
				{Predicate: TagPredicate{Tag: "six_months"}, Points: 8, Label: "Within six months"},
				{Predicate: TagPredicate{Tag: "exploring"}, Points: 4, Label: "No concrete timeline"},
			},
			CategoryContact: {
				{Predicate: TagPredicate{Tag: ContactTagFullVerified}, Points: 10, Label: "Full verified contact details"},
				{Predicate: TagPredicate{Tag: ContactTagFull}, Points: 8, Label: "Full contact details"},
				{Predicate: TagPredicate{Tag: ContactTagPartial}, Points: 5, Label: "Partial contact details"},
			},
		},
		Thresholds: DefaultThresholds,
	}
}
