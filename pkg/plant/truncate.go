package plant

import (
	"strings"
	"unicode"
)

// marker is appended when a truncation cuts mid-sentence.
const marker = "..."

// sentenceFloor is the fraction of maxLen below which a sentence-boundary
// cut is rejected. Without the floor, an early sentence end would produce a
// pathologically short result even though far more text fits.
const sentenceFloor = 0.6

// Truncate shortens text to at most maxLen runes without splitting a word.
//
// In priority order:
//  1. Text already within the limit is returned unchanged.
//  2. The nearest sentence-terminal punctuation (., !, ?) scanning backward
//     from maxLen is used as the cut, inclusive, with no marker — but only
//     if it sits at or past 60% of maxLen.
//  3. Otherwise the nearest word boundary scanning backward from maxLen-3
//     is used and "..." is appended.
//  4. A single unbroken token is hard-cut at maxLen-3 with "..." appended.
//
// Lengths are counted in runes. maxLen below 4 leaves no room for the
// marker; callers are expected to configure limits well above that.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	// Prefer a complete thought: cut at the last sentence end within the
	// limit, as long as it keeps at least 60% of the budget.
	floor := int(sentenceFloor * float64(maxLen))
	for i := maxLen - 1; i >= floor; i-- {
		if isSentenceEnd(runes[i]) {
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}

	// No usable sentence end: cut at a word boundary, reserving room for
	// the marker.
	cut := maxLen - len(marker)
	for i := cut - 1; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return strings.TrimSpace(string(runes[:i])) + marker
		}
	}

	// One long token; hard cut.
	return strings.TrimSpace(string(runes[:cut])) + marker
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
