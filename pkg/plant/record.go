// Package plant defines the plant care record flowing through the pipeline,
// the per-field length limits applied before persistence and rendering, and
// the boundary-aware text truncation those limits rely on.
package plant

// Canonical field names. These match the keys of the remote service's JSON
// response and the columns of the canonical CSV layout.
const (
	FieldDescription = "description"
	FieldLight       = "light"
	FieldWater       = "water"
	FieldFeeding     = "feeding"
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldToxicity    = "toxicity"
)

// Record is the unit of data flowing through the pipeline. It is treated as
// an immutable value within a single render: policy application and edits
// rebuild a record rather than mutating one in place.
type Record struct {
	ScientificName string // primary key; matched case-insensitively by stores
	CommonName     string
	Description    string
	Light          string
	Water          string
	Feeding        string
	Temperature    string
	Humidity       string
	Toxicity       string
}

// CareField is one of the fixed, ordered label/value pairs drawn on a card.
type CareField struct {
	Name  string // canonical field name (e.g. "light")
	Label string // display label (e.g. "Light:")
	Value string
}

// careFieldOrder fixes the drawing order of the care fields on a card.
var careFieldOrder = []struct {
	name  string
	label string
}{
	{FieldLight, "Light:"},
	{FieldWater, "Water:"},
	{FieldFeeding, "Feeding:"},
	{FieldTemperature, "Temperature:"},
	{FieldHumidity, "Humidity:"},
	{FieldToxicity, "Toxicity:"},
}

// CareFields returns the record's care fields in card drawing order.
// Empty values are returned as-is; the layout substitutes "N/A".
func (r Record) CareFields() []CareField {
	fields := make([]CareField, 0, len(careFieldOrder))
	for _, f := range careFieldOrder {
		fields = append(fields, CareField{Name: f.name, Label: f.label, Value: r.Field(f.name)})
	}
	return fields
}

// Field returns the value of the named field, or "" for unknown names.
func (r Record) Field(name string) string {
	switch name {
	case FieldDescription:
		return r.Description
	case FieldLight:
		return r.Light
	case FieldWater:
		return r.Water
	case FieldFeeding:
		return r.Feeding
	case FieldTemperature:
		return r.Temperature
	case FieldHumidity:
		return r.Humidity
	case FieldToxicity:
		return r.Toxicity
	}
	return ""
}

// WithField returns a copy of the record with the named field replaced.
// Unknown names return the record unchanged.
func (r Record) WithField(name, value string) Record {
	switch name {
	case FieldDescription:
		r.Description = value
	case FieldLight:
		r.Light = value
	case FieldWater:
		r.Water = value
	case FieldFeeding:
		r.Feeding = value
	case FieldTemperature:
		r.Temperature = value
	case FieldHumidity:
		r.Humidity = value
	case FieldToxicity:
		r.Toxicity = value
	}
	return r
}

// LimitedFields lists the field names that carry a length limit, in a stable
// order. CommonName and ScientificName are deliberately absent: identifiers
// are never truncated.
func LimitedFields() []string {
	return []string{
		FieldDescription,
		FieldLight,
		FieldWater,
		FieldFeeding,
		FieldTemperature,
		FieldHumidity,
		FieldToxicity,
	}
}
