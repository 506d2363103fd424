package plant

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func TestTruncateIdentityBelowLimit(t *testing.T) {
	tests := []string{
		"",
		"short",
		"Exactly at the limit here",
		"A vine with fenestrated leaves.",
	}
	for _, text := range tests {
		if got := Truncate(text, 100); got != text {
			t.Errorf("Truncate(%q, 100) = %q, want unchanged", text, got)
		}
	}

	// Exactly at the limit is unchanged too.
	text := strings.Repeat("a", 50)
	if got := Truncate(text, 50); got != text {
		t.Errorf("text of exactly max length should be unchanged")
	}
}

func TestTruncateSentenceBoundary(t *testing.T) {
	// Sentence end at 60% or later of the budget: cut there, keep the
	// punctuation, no marker.
	text := "The first sentence is long enough to pass the floor check easily. Trailing text that will not fit in the budget at all."
	got := Truncate(text, 80)
	want := "The first sentence is long enough to pass the floor check easily."
	if got != want {
		t.Errorf("Truncate() = %q, want %q", got, want)
	}
	if strings.HasSuffix(got, marker) {
		t.Error("sentence-boundary cut should not append a marker")
	}
}

func TestTruncateSentenceBoundaryBelowFloorIgnored(t *testing.T) {
	// A sentence end before 60% of the budget must not win over a later
	// word boundary: we'd rather cut mid-paragraph than lose 40%+ of the
	// budget to an early period.
	text := "Short. " + strings.Repeat("filler ", 40)
	got := Truncate(text, 100)
	if got == "Short." {
		t.Fatal("early sentence end below the floor should be rejected")
	}
	if !strings.HasSuffix(got, marker) {
		t.Errorf("word-boundary cut should append marker, got %q", got)
	}
	if utf8.RuneCountInString(got) > 100 {
		t.Errorf("length = %d, want <= 100", utf8.RuneCountInString(got))
	}
}

func TestTruncateWordBoundary(t *testing.T) {
	text := strings.Repeat("leafy ", 60) // no sentence punctuation anywhere
	got := Truncate(text, 100)
	if !strings.HasSuffix(got, marker) {
		t.Errorf("want marker suffix, got %q", got)
	}
	if utf8.RuneCountInString(got) > 100 {
		t.Errorf("length = %d, want <= 100", utf8.RuneCountInString(got))
	}
	stripped := strings.TrimSuffix(got, marker)
	if strings.HasSuffix(stripped, " ") {
		t.Error("cut should not leave trailing whitespace before the marker")
	}
	// The cut must land between words, never inside one.
	if !strings.HasPrefix(text, stripped) {
		t.Fatalf("result is not a prefix of the input")
	}
	next, _ := utf8.DecodeRuneInString(text[len(stripped):])
	if !unicode.IsSpace(next) {
		t.Errorf("rune after cut = %q, want whitespace", next)
	}
}

func TestTruncateHardCut(t *testing.T) {
	text := strings.Repeat("x", 300) // one unbroken token
	got := Truncate(text, 50)
	if utf8.RuneCountInString(got) > 50 {
		t.Errorf("length = %d, want <= 50", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, marker) {
		t.Errorf("hard cut should append marker, got %q", got)
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 100),
		"One sentence. Another sentence! A third? And more text following after.",
		strings.Repeat("y", 500),
		"Ünïcødé téxt with multi-byte runes " + strings.Repeat("ö", 200),
	}
	for _, text := range inputs {
		for _, maxLen := range []int{4, 10, 50, 120, 250} {
			got := Truncate(text, maxLen)
			if n := utf8.RuneCountInString(got); n > maxLen {
				t.Errorf("Truncate(len=%d, max=%d) produced %d runes",
					utf8.RuneCountInString(text), maxLen, n)
			}
		}
	}
}

func TestTruncateDescriptionScenario(t *testing.T) {
	// 356-rune description with a sentence boundary past position 150,
	// limit 250: the output ends at that boundary and stays within budget.
	first := strings.Repeat("alpha ", 30) + "end."          // 184 runes
	second := " " + strings.Repeat("beta ", 30) + "fin."    // 155 runes
	text := first + second + " final tail here!"            // 356 runes total
	if n := utf8.RuneCountInString(text); n != 356 {
		t.Fatalf("test fixture is %d runes, want 356", n)
	}

	got := Truncate(text, 250)
	if n := utf8.RuneCountInString(got); n > 250 {
		t.Errorf("length = %d, want <= 250", n)
	}
	if got != first {
		t.Errorf("expected cut at the sentence boundary inside the budget:\ngot  %q\nwant %q", got, first)
	}
}
