package domain

import "testing"

func TestNextStepFixedOrder(t *testing.T) {
	tests := []struct {
		name  string
		facts FactRecord
		want  Step
	}{
		{"empty record starts at budget", FactRecord{}, StepBudget},
		{"budget filled moves to authority", FactRecord{Budget: strPtr("$900k")}, StepAuthority},
		{
			"all BANT filled moves to contact name",
			FactRecord{
				Budget:    strPtr("$900k"),
				Authority: strPtr("sole"),
				Need:      strPtr("upgrade"),
				Timeline:  strPtr("this month"),
			},
			StepContactName,
		},
		{
			"name and phone filled moves to email",
			FactRecord{
				Budget:    strPtr("$900k"),
				Authority: strPtr("sole"),
				Need:      strPtr("upgrade"),
				Timeline:  strPtr("this month"),
				Contact: Contact{
					FullName: strPtr("Kim Arnold"),
					Phone:    strPtr("+15550001111"),
				},
			},
			StepContactEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStep(tt.facts); got != tt.want {
				t.Errorf("NextStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNextStepSkipsOutOfOrderFills verifies that a field volunteered ahead of
// its turn is never asked for again.
func TestNextStepSkipsOutOfOrderFills(t *testing.T) {
	facts := FactRecord{
		Timeline: strPtr("next month"), // volunteered before budget was known
	}

	if got := NextStep(facts); got != StepBudget {
		t.Fatalf("NextStep() = %q, want %q", got, StepBudget)
	}

	facts.Budget = strPtr("$400k")
	facts.Authority = strPtr("joint")
	facts.Need = strPtr("first home")

	// Timeline is already captured, so the sequencer must jump straight to contact.
	if got := NextStep(facts); got != StepContactName {
		t.Errorf("NextStep() = %q, want %q (timeline should be skipped)", got, StepContactName)
	}
}

func TestNextStepComplete(t *testing.T) {
	facts := FactRecord{
		Budget:    strPtr("$400k"),
		Authority: strPtr("joint"),
		Need:      strPtr("first home"),
		Timeline:  strPtr("next month"),
		Contact: Contact{
			FullName: strPtr("Kim Arnold"),
			Phone:    strPtr("+15550001111"),
			Email:    strPtr("kim@example.com"),
		},
	}

	if got := NextStep(facts); got != StepComplete {
		t.Fatalf("NextStep() = %q, want %q", got, StepComplete)
	}
	if !facts.IsComplete() {
		t.Error("IsComplete() = false for fully populated record")
	}
}

// TestNextStepDeterministic verifies the sequencer is a pure function of the
// fact snapshot.
func TestNextStepDeterministic(t *testing.T) {
	facts := FactRecord{
		Budget: strPtr("$2M"),
		Need:   strPtr("beach house"),
	}

	first := NextStep(facts)
	second := NextStep(facts)

	if first != second {
		t.Errorf("NextStep not deterministic: %q then %q", first, second)
	}
	if first != StepAuthority {
		t.Errorf("NextStep() = %q, want %q", first, StepAuthority)
	}
}

func TestStepQuestions(t *testing.T) {
	for _, entry := range questionOrder {
		if entry.step.Question() == "" {
			t.Errorf("step %q has no question text", entry.step)
		}
	}
	if StepComplete.Question() != "" {
		t.Error("StepComplete should have no question text")
	}
}
