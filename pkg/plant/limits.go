package plant

import "unicode/utf8"

// Limits maps a field name to its maximum length in runes. The mapping is
// built once at startup from configuration and never mutated afterwards;
// fields without an entry are unlimited.
type Limits map[string]int

// DefaultLimits returns the standard per-field budgets, sized so that a
// fully populated record fits the 6x4in card.
func DefaultLimits() Limits {
	return Limits{
		FieldDescription: 250, // 2-3 sentences of plant description
		FieldLight:       180, // 1-2 sentences of light requirements
		FieldWater:       180, // 1-2 sentences of watering guidance
		FieldFeeding:     180, // 1-2 sentences of fertilizer guidance
		FieldTemperature: 120, // temperature range and notes
		FieldHumidity:    120, // humidity preferences
		FieldToxicity:    150, // toxicity information
	}
}

// Truncation reports a single field shortened by Apply. Truncations are
// informational, never failures.
type Truncation struct {
	Field string
	From  int // original length in runes
	To    int // truncated length in runes
}

// Apply enforces the limits on every limited, non-empty field of the record
// and returns the rebuilt record along with the truncations performed.
//
// Apply is pure and total: it never fails, and applying it twice yields the
// same record as applying it once. It runs at exactly two points: before a
// record is persisted, and before a record is laid out — so stored and
// rendered text can never drift apart.
func (l Limits) Apply(r Record) (Record, []Truncation) {
	var events []Truncation
	for _, name := range LimitedFields() {
		limit, ok := l[name]
		if !ok || limit <= 0 {
			continue
		}
		value := r.Field(name)
		if value == "" {
			continue
		}
		from := utf8.RuneCountInString(value)
		if from <= limit {
			continue
		}
		truncated := Truncate(value, limit)
		r = r.WithField(name, truncated)
		events = append(events, Truncation{
			Field: name,
			From:  from,
			To:    utf8.RuneCountInString(truncated),
		})
	}
	return r, events
}
