// Package title turns raw transcriptions into display-ready chapter titles.
package title

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// headingPattern standardizes chapter/part/section headings, e.g.
// "Chapter 1. Title" or "Part Two, Title" -> "Chapter 1: Title". The colon is
// accepted after the number so already-canonical titles normalize to themselves.
var headingPattern = regexp.MustCompile(`(?i)^(chapter|section|part)\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten)[.,:]?\s*(.*?)[.,]?$`)

// Normalize title-cases every word of the raw transcription and, when fixup is
// enabled, canonicalizes recognized headings to "<Prefix> <Number>: <Rest>".
// Without a heading match only trailing periods and commas are stripped.
// Normalize is idempotent: applying it to its own output changes nothing.
func Normalize(raw string, fixup bool) string {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return ""
	}
	text = cases.Title(language.English).String(text)

	if !fixup {
		return text
	}

	if groups := headingPattern.FindStringSubmatch(text); groups != nil {
		prefix, number, rest := groups[1], groups[2], groups[3]
		if rest == "" {
			return fmt.Sprintf("%s %s", prefix, number)
		}
		return fmt.Sprintf("%s %s: %s", prefix, number, strings.TrimRight(rest, ".,"))
	}

	return strings.TrimRight(text, ".,")
}
