package plant

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	cultivarRE   = regexp.MustCompile(`('.*?')`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// rank markers stay lowercase regardless of input casing.
var rankMarkers = map[string]bool{
	"var.":   true,
	"subsp.": true,
	"ssp.":   true,
	"f.":     true,
}

// NormalizeScientificName converts a scientific name to proper botanical
// casing: the genus capitalized, species and infraspecific epithets
// lowercase, rank markers (var., subsp., f., ssp.) lowercase, cultivar names
// in single quotes Title Cased, and the hybrid marker × preserved.
//
//	"MONSTERA DELICIOSA"           -> "Monstera deliciosa"
//	"ficus elastica 'ruby'"        -> "Ficus elastica 'Ruby'"
//	"philodendron hederaceum VAR. oxycardium" -> "Philodendron hederaceum var. oxycardium"
func NormalizeScientificName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	// Cultivar names in quotes are cased independently of the rest.
	parts := cultivarRE.Split(name, -1)
	quoted := cultivarRE.FindAllString(name, -1)

	var b strings.Builder
	first := true
	for i, part := range parts {
		for _, word := range strings.Fields(part) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(normalizeWord(word, first))
			first = false
		}
		if i < len(quoted) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			inner := strings.TrimSpace(strings.Trim(quoted[i], "'"))
			b.WriteString("'" + titleCase(inner) + "'")
		}
	}

	return whitespaceRE.ReplaceAllString(strings.TrimSpace(b.String()), " ")
}

func normalizeWord(word string, isGenus bool) string {
	lower := strings.ToLower(word)
	switch {
	case rankMarkers[lower]:
		return lower
	case lower == "×" || (lower == "x" && len(word) == 1):
		return "×" // hybrid marker
	case isGenus:
		return capitalize(lower)
	default:
		return lower
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
