package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"leadqual_backend/internal/qualification/domain"
)

// Contact completeness tags.
const (
	ContactTagFullVerified = "full_verified"
	ContactTagFull         = "full"
	ContactTagPartial      = "partial"
)

// tagTable maps free-text keywords to a normalized type tag. The first entry
// with a matching keyword wins, so more specific rows come first. Keywords
// match on word boundaries only; "now" must not match inside "know".
type tagTable []struct {
	patterns []*regexp.Regexp
	tag      string
}

func keywordPatterns(keywords ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return patterns
}

var authorityTags = tagTable{
	{keywordPatterns("sole", "myself", "on my own", "just me", "alone", "only me"), "sole"},
	{keywordPatterns("spouse", "partner", "wife", "husband", "together", "joint", "both of us"), "joint"},
	{keywordPatterns("board", "committee", "family", "investors", "company", "group"), "group"},
}

var needTags = tagTable{
	{keywordPatterns("immediate", "urgent", "urgently", "asap", "right away", "as soon as"), "immediate"},
	{keywordPatterns("planned", "planning", "upgrade", "relocate", "relocating", "relocation", "invest", "investment", "investing", "looking to buy", "need"), "planned"},
	{keywordPatterns("exploring", "browsing", "curious", "just looking", "not sure"), "exploring"},
}

var timelineTags = tagTable{
	{keywordPatterns("immediately", "right away", "asap", "this week", "now"), "immediate"},
	{keywordPatterns("this month", "few weeks", "30 days", "next month", "within a month"), "this_month"},
	{keywordPatterns("three months", "3 months", "this quarter", "couple of months"), "three_months"},
	{keywordPatterns("six months", "6 months", "half a year", "later this year"), "six_months"},
	{keywordPatterns("next year", "someday", "eventually", "no rush", "exploring"), "exploring"},
}

// knownTags allows exact normalized tags to pass through unchanged, so an
// extractor that already normalized a value is honored verbatim.
var knownTags = map[string]map[string]bool{
	CategoryAuthority: {"sole": true, "joint": true, "group": true},
	CategoryNeed:      {"immediate": true, "planned": true, "exploring": true},
	CategoryTimeline:  {"immediate": true, "this_month": true, "three_months": true, "six_months": true, "exploring": true},
}

// negationWords flip the meaning of a keyword that follows them closely.
// "I don't need anything urgent" states the opposite of urgency.
var negationWords = map[string]bool{
	"no": true, "not": true, "never": true, "without": true, "nothing": true,
	"don't": true, "dont": true, "won't": true, "wont": true,
	"isn't": true, "isnt": true, "can't": true, "cant": true,
}

// NormalizeTag maps a free-text fact to its type tag for the given category.
// Returns "" when nothing matches; an unmatched fact contributes zero points.
func NormalizeTag(category, text string) string {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return ""
	}
	if knownTags[category][trimmed] {
		return trimmed
	}

	var table tagTable
	switch category {
	case CategoryAuthority:
		table = authorityTags
	case CategoryNeed:
		table = needTags
	case CategoryTimeline:
		table = timelineTags
	default:
		return ""
	}

	for _, entry := range table {
		for _, re := range entry.patterns {
			loc := re.FindStringIndex(trimmed)
			if loc == nil || negatedBefore(trimmed, loc[0]) {
				continue
			}
			return entry.tag
		}
	}
	return ""
}

// negatedBefore reports whether any of the last few tokens before the match
// is a negation word.
func negatedBefore(text string, idx int) bool {
	tokens := strings.Fields(text[:idx])
	start := len(tokens) - 3
	if start < 0 {
		start = 0
	}
	for _, tok := range tokens[start:] {
		if negationWords[strings.Trim(tok, ",.;:!?")] {
			return true
		}
	}
	return false
}

// ContactTag derives the contact completeness tag. "Verified" means the phone
// normalized to E.164 and the email is structurally valid, which the
// extractor establishes at capture time.
func ContactTag(c domain.Contact) string {
	have := 0
	if c.FullName != nil {
		have++
	}
	if c.Phone != nil {
		have++
	}
	if c.Email != nil {
		have++
	}

	switch {
	case have == 3 && isE164(*c.Phone) && isEmail(*c.Email):
		return ContactTagFullVerified
	case have == 3:
		return ContactTagFull
	case have > 0:
		return ContactTagPartial
	default:
		return ""
	}
}

var (
	e164Re   = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	amountRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(k|m|mm|b|thousand|million|billion)?\b`)
)

func isE164(phone string) bool {
	return e164Re.MatchString(phone)
}

func isEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ParseBudgetAmount extracts a numeric amount from free-text budget such as
// "$500k", "1.2 million", or "$20-25M". Two numbers form a range only when
// joined by a dash (or "to"); ranges resolve to their midpoint, and a
// magnitude suffix on the upper bound applies to a bare lower bound
// ("20-25M" reads as 20M-25M). Returns nil when no amount is present.
func ParseBudgetAmount(text string) *float64 {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	if cleaned == "" {
		return nil
	}
	cleaned = strings.NewReplacer("$", "", "€", "", "£", "", ",", "").Replace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, " to ", "-")

	matches := amountRe.FindAllStringSubmatch(cleaned, 2)
	if len(matches) == 0 {
		return nil
	}

	first, firstSuffix := parseAmountMatch(matches[0])
	if len(matches) == 1 {
		return &first
	}

	locs := amountRe.FindAllStringIndex(cleaned, 2)
	if !rangeSeparated(cleaned, locs[0][1], locs[1][0]) {
		// "2 bed around 500k" is not a 2-to-500k range. The amount
		// carrying a magnitude suffix is the budget.
		second, secondSuffix := parseAmountMatch(matches[1])
		if firstSuffix == "" && secondSuffix != "" {
			return &second
		}
		return &first
	}

	second, secondSuffix := parseAmountMatch(matches[1])

	// "20-25M": the shared magnitude is stated once, on the upper bound.
	if firstSuffix == "" && secondSuffix != "" {
		first *= suffixMultiplier(secondSuffix)
	}

	mid := (first + second) / 2
	return &mid
}

// rangeSeparated reports whether the text between two amounts is only a dash.
func rangeSeparated(text string, from, to int) bool {
	sep := strings.TrimSpace(text[from:to])
	return sep != "" && strings.Trim(sep, "-–") == ""
}

func parseAmountMatch(match []string) (float64, string) {
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, ""
	}
	suffix := match[2]
	return value * suffixMultiplier(suffix), suffix
}

func suffixMultiplier(suffix string) float64 {
	switch suffix {
	case "k", "thousand":
		return 1_000
	case "m", "mm", "million":
		return 1_000_000
	case "b", "billion":
		return 1_000_000_000
	}
	return 1
}
