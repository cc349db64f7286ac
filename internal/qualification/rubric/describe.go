package rubric

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"leadqual_backend/internal/qualification/scoring"
)

// descriptionTemplate renders the human-readable summary that is stored next
// to the document and injected into extraction prompts. Rendering iterates
// categories in their canonical order so the same document always produces
// the same text.
var descriptionTemplate = template.Must(template.New("rubric").Parse(
	`Lead scoring rubric (0-100 scale).
Category weights: {{.WeightsLine}}.
{{range .Categories}}{{.Name}} ({{.Weight}} points max): {{.CriteriaLine}}.
{{end}}Tiers: priority at {{.Thresholds.Priority}}+, hot at {{.Thresholds.Hot}}+, warm at {{.Thresholds.Warm}}+, cold below {{.Thresholds.Warm}}.`))

type describeCategory struct {
	Name         string
	Weight       int
	CriteriaLine string
}

type describeData struct {
	WeightsLine string
	Categories  []describeCategory
	Thresholds  scoring.Thresholds
}

// Describe renders the deterministic natural-language summary of a document.
func Describe(input RubricConfigInput) (string, error) {
	data := describeData{
		WeightsLine: weightsLine(input.Weights),
		Thresholds:  input.Thresholds,
	}
	for _, category := range scoring.Categories {
		data.Categories = append(data.Categories, describeCategory{
			Name:         category,
			Weight:       input.Weights.ByCategory(category),
			CriteriaLine: criteriaLine(input.Criteria[category]),
		})
	}

	var sb strings.Builder
	if err := descriptionTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render rubric description: %w", err)
	}
	return sb.String(), nil
}

func weightsLine(w scoring.Weights) string {
	parts := make([]string, 0, len(scoring.Categories))
	for _, category := range scoring.Categories {
		parts = append(parts, fmt.Sprintf("%s %d", category, w.ByCategory(category)))
	}
	return strings.Join(parts, ", ")
}

func criteriaLine(rows []CriterionInput) string {
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, fmt.Sprintf("%s = %d", describeCriterion(row), row.Points))
	}
	return strings.Join(parts, "; ")
}

func describeCriterion(row CriterionInput) string {
	switch {
	case row.Tag != "":
		return fmt.Sprintf("%s [%s]", row.Label, row.Tag)
	case row.Min != nil && row.Max != nil:
		return fmt.Sprintf("%s [%s-%s]", row.Label, formatAmount(*row.Min), formatAmount(*row.Max))
	case row.Min != nil:
		return fmt.Sprintf("%s [%s and up]", row.Label, formatAmount(*row.Min))
	case row.Max != nil:
		return fmt.Sprintf("%s [under %s]", row.Label, formatAmount(*row.Max))
	default:
		return fmt.Sprintf("%s [any amount]", row.Label)
	}
}

func formatAmount(v float64) string {
	switch {
	case v >= 1_000_000:
		return "$" + strconv.FormatFloat(v/1_000_000, 'f', -1, 64) + "M"
	case v >= 1_000:
		return "$" + strconv.FormatFloat(v/1_000, 'f', -1, 64) + "k"
	default:
		return "$" + strconv.FormatFloat(v, 'f', -1, 64)
	}
}
