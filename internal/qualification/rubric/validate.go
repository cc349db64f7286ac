package rubric

import (
	"fmt"
	"strings"

	"leadqual_backend/internal/qualification/scoring"
	"leadqual_backend/platform/apperr"
)

// FieldError pins a validation failure to the document field that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks a rubric document against the structural rules every stored
// rubric must satisfy. It collects all failures rather than stopping at the
// first, so an administrator can fix a document in one round trip.
func Validate(input RubricConfigInput) []FieldError {
	var errs []FieldError

	if sum := input.Weights.Sum(); sum != 100 {
		errs = append(errs, FieldError{
			Field:   "weights",
			Message: fmt.Sprintf("category weights must sum to 100, got %d", sum),
		})
	}
	for _, category := range scoring.Categories {
		if input.Weights.ByCategory(category) < 0 {
			errs = append(errs, FieldError{
				Field:   "weights." + category,
				Message: "weight must not be negative",
			})
		}
	}

	t := input.Thresholds
	if !(t.Priority > t.Hot && t.Hot > t.Warm) {
		errs = append(errs, FieldError{
			Field: "thresholds",
			Message: fmt.Sprintf(
				"thresholds must be strictly descending (priority > hot > warm), got %d/%d/%d",
				t.Priority, t.Hot, t.Warm),
		})
	}

	for _, category := range scoring.Categories {
		rows := input.Criteria[category]
		if len(rows) == 0 {
			errs = append(errs, FieldError{
				Field:   "criteria." + category,
				Message: "criteria table must not be empty",
			})
			continue
		}
		for i, row := range rows {
			errs = append(errs, validateCriterion(category, i, row)...)
		}
	}
	for category := range input.Criteria {
		if !isKnownCategory(category) {
			errs = append(errs, FieldError{
				Field:   "criteria." + category,
				Message: "unknown category",
			})
		}
	}

	return errs
}

func validateCriterion(category string, index int, row CriterionInput) []FieldError {
	field := fmt.Sprintf("criteria.%s[%d]", category, index)
	var errs []FieldError

	if strings.TrimSpace(row.Label) == "" {
		errs = append(errs, FieldError{Field: field + ".label", Message: "label must not be empty"})
	}
	if row.Points < 0 {
		errs = append(errs, FieldError{Field: field + ".points", Message: "points must not be negative"})
	}
	if row.Tag != "" && (row.Min != nil || row.Max != nil) {
		errs = append(errs, FieldError{Field: field, Message: "criterion must match either a tag or a range, not both"})
	}
	if row.Min != nil && row.Max != nil && *row.Min >= *row.Max {
		errs = append(errs, FieldError{Field: field, Message: "range min must be below max"})
	}
	if category != scoring.CategoryBudget && row.Tag == "" {
		errs = append(errs, FieldError{Field: field, Message: "non-budget criteria must match a tag"})
	}

	return errs
}

func isKnownCategory(category string) bool {
	for _, known := range scoring.Categories {
		if known == category {
			return true
		}
	}
	return false
}

// ValidationError wraps collected field errors into the application error
// shape handlers know how to render.
func ValidationError(errs []FieldError) error {
	return apperr.Validation("rubric configuration is invalid").
		WithOp("rubric.Validate").
		WithDetails(map[string]any{"errors": errs})
}
