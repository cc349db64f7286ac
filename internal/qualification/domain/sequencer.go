package domain

// Step is a stage in the fixed qualification question order. The sequencer is
// a pure function over the fact snapshot, recomputed every turn rather than
// persisted as a cursor, so it cannot drift from actual fact completeness
// after out-of-order fills or process restarts.
type Step string

const (
	StepBudget       Step = "budget"
	StepAuthority    Step = "authority"
	StepNeed         Step = "need"
	StepTimeline     Step = "timeline"
	StepContactName  Step = "contact_name"
	StepContactPhone Step = "contact_phone"
	StepContactEmail Step = "contact_email"
	StepComplete     Step = "complete"
)

// questionOrder defines the single linear path. There is no branching by
// content; a step whose field is already filled is skipped.
var questionOrder = []struct {
	step   Step
	filled func(FactRecord) bool
}{
	{StepBudget, func(f FactRecord) bool { return f.Budget != nil }},
	{StepAuthority, func(f FactRecord) bool { return f.Authority != nil }},
	{StepNeed, func(f FactRecord) bool { return f.Need != nil }},
	{StepTimeline, func(f FactRecord) bool { return f.Timeline != nil }},
	{StepContactName, func(f FactRecord) bool { return f.Contact.FullName != nil }},
	{StepContactPhone, func(f FactRecord) bool { return f.Contact.Phone != nil }},
	{StepContactEmail, func(f FactRecord) bool { return f.Contact.Email != nil }},
}

// stepQuestions holds the canonical question per step. Wording is owned by
// the conversation transport; these are the defaults it falls back to.
var stepQuestions = map[Step]string{
	StepBudget:       "What budget range are you considering for this purchase?",
	StepAuthority:    "Will you be making this decision yourself, or together with someone else?",
	StepNeed:         "What are you looking for in your next property?",
	StepTimeline:     "When would you ideally like to move?",
	StepContactName:  "May I have your full name?",
	StepContactPhone: "What phone number is best to reach you on?",
	StepContactEmail: "And finally, what email address can we use?",
}

// NextStep scans the fixed order and returns the first unmet step, or
// StepComplete when every required field is non-null.
func NextStep(facts FactRecord) Step {
	for _, entry := range questionOrder {
		if !entry.filled(facts) {
			return entry.step
		}
	}
	return StepComplete
}

// Question returns the canonical question text for the step. Empty for
// StepComplete and unknown steps.
func (s Step) Question() string {
	return stepQuestions[s]
}

// IsKnownStep reports whether the value is one of the defined steps.
func IsKnownStep(step string) bool {
	switch Step(step) {
	case StepBudget, StepAuthority, StepNeed, StepTimeline,
		StepContactName, StepContactPhone, StepContactEmail, StepComplete:
		return true
	}
	return false
}
