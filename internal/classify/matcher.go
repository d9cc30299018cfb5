package classify

import (
	"strconv"
	"strings"
	"unicode"
)

// Matcher decides whether a transcription marks a chapter heading.
type Matcher struct {
	targets       map[string]struct{}
	firstWordOnly bool
}

// NewMatcher builds a matcher over the given target words. Words are
// lowercased; empty entries are dropped.
func NewMatcher(words []string, firstWordOnly bool) *Matcher {
	targets := make(map[string]struct{}, len(words))
	for _, word := range words {
		normalized := strings.ToLower(strings.TrimSpace(word))
		if normalized == "" {
			continue
		}
		targets[normalized] = struct{}{}
	}
	return &Matcher{targets: targets, firstWordOnly: firstWordOnly}
}

// Match reports whether the transcription hits a target. In first-word mode
// the first whitespace field is stripped of surrounding punctuation and
// lowercased before an exact lookup; otherwise any case-insensitive substring
// occurrence counts.
func (m *Matcher) Match(text string) bool {
	if m.firstWordOnly {
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return false
		}
		word := strings.ToLower(strings.TrimFunc(fields[0], unicode.IsPunct))
		_, ok := m.targets[word]
		return ok
	}
	lowered := strings.ToLower(text)
	for target := range m.targets {
		if strings.Contains(lowered, target) {
			return true
		}
	}
	return false
}

var (
	numberOnes = []string{
		"one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine",
	}
	numberTeens = []string{
		"ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}
	numberTens = []string{
		"twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety",
	}
)

// NumericTargets returns the closed numeric heading vocabulary: the digits
// 1 through 100 and their spelled-out cardinals, with compound tens joined by
// a space ("twenty one").
func NumericTargets() []string {
	targets := make([]string, 0, 200)
	for i := 1; i <= 100; i++ {
		targets = append(targets, strconv.Itoa(i))
	}
	targets = append(targets, numberOnes...)
	targets = append(targets, numberTeens...)
	for _, ten := range numberTens {
		targets = append(targets, ten)
		for _, one := range numberOnes {
			targets = append(targets, ten+" "+one)
		}
	}
	targets = append(targets, "one hundred")
	return targets
}
