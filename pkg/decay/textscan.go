package decay

import (
	"regexp"
	"strings"
	"time"
)

// oppositionPairs are word pairs that state mutually exclusive positions.
// Two texts landing on opposite sides of a pair is treated as a conflict.
var oppositionPairs = [][2]string{
	{"remote", "office"},
	{"remote", "onsite"},
	{"enabled", "disabled"},
	{"allowed", "prohibited"},
	{"allowed", "forbidden"},
	{"permitted", "banned"},
	{"mandatory", "optional"},
	{"required", "optional"},
	{"deprecated", "supported"},
	{"increase", "decrease"},
	{"approved", "rejected"},
}

// negators flip the meaning of the phrase that follows them.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"cannot":  true,
	"without": true,
}

var (
	tokenPattern  = regexp.MustCompile(`[a-z0-9]+`)
	expiryPattern = regexp.MustCompile(`(?i)(?:expires?|valid until|effective until|until)\s+(?:(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\s+)?(\d{4})`)
	numericFact   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+([a-z]+(?:\s+[a-z]+)?)`)
)

var monthIndex = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

func tokenize(content string) []string {
	return tokenPattern.FindAllString(strings.ToLower(content), -1)
}

func tokenSet(content string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range tokenize(content) {
		set[tok] = true
	}
	return set
}

// declaredExpiry extracts the latest explicit expiry statement from content.
// A bare year expires at the end of that year, a month-year pair at the end
// of that month.
func declaredExpiry(content string) (time.Time, bool) {
	matches := expiryPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return time.Time{}, false
	}

	var latest time.Time
	for _, m := range matches {
		year := 0
		for _, r := range m[2] {
			year = year*10 + int(r-'0')
		}
		month := time.December
		if m[1] != "" {
			month = monthIndex[strings.ToLower(m[1])]
		}
		// First day of the following month is the expiry boundary.
		boundary := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		if boundary.After(latest) {
			latest = boundary
		}
	}
	return latest, true
}

// oppositionConflicts reports opposition pairs where a sits on one side and
// b on the other, without also containing the same side itself.
func oppositionConflicts(a, b map[string]bool) []string {
	conflicts := []string{}
	for _, pair := range oppositionPairs {
		left, right := pair[0], pair[1]
		if a[left] && !a[right] && b[right] && !b[left] {
			conflicts = append(conflicts, left+" vs "+right)
		} else if a[right] && !a[left] && b[left] && !b[right] {
			conflicts = append(conflicts, right+" vs "+left)
		}
	}
	return conflicts
}

// numericConflicts finds subjects stated with different numbers in a and b,
// like "3 office days" against "2 office days".
func numericConflicts(a, b string) []string {
	factsA := extractNumericFacts(a)
	factsB := extractNumericFacts(b)

	conflicts := []string{}
	for subject, valueA := range factsA {
		if valueB, ok := factsB[subject]; ok && valueA != valueB {
			conflicts = append(conflicts, "differing figures for "+subject+" ("+valueA+" vs "+valueB+")")
		}
	}
	return conflicts
}

func extractNumericFacts(content string) map[string]string {
	facts := map[string]string{}
	for _, m := range numericFact.FindAllStringSubmatch(strings.ToLower(content), -1) {
		facts[strings.TrimSpace(m[2])] = m[1]
	}
	return facts
}

// hasNegatedOverlap reports whether latest negates a phrase that prior
// states positively. It looks for a negator immediately before a token that
// prior contains un-negated.
func hasNegatedOverlap(latest, prior string) bool {
	latestTokens := tokenize(latest)
	priorSet := tokenSet(prior)

	for i := 1; i < len(latestTokens); i++ {
		if negators[latestTokens[i-1]] && priorSet[latestTokens[i]] {
			return true
		}
	}
	return false
}

// changeRatio measures how much two contents differ as the Jaccard distance
// between their token sets.
func changeRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return 1 - float64(intersection)/float64(union)
}
