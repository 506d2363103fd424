package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/observability"
	"github.com/leafvessel/carecard/pkg/plant"
)

const (
	careMaxTokens   = 1024
	careTemperature = 0.3
)

// requiredCareKeys are the keys a successful care response must carry.
// common_name is optional; everything else is mandatory.
var requiredCareKeys = []string{
	"description",
	plant.FieldLight,
	plant.FieldWater,
	plant.FieldFeeding,
	plant.FieldTemperature,
	plant.FieldHumidity,
	plant.FieldToxicity,
}

// FetchCareData requests care data for a scientific name and returns a
// populated record. The scientific name is normalized before the request so
// cache keys and stored records agree on casing.
//
// Response classification happens in two stages. First the error key is
// inspected: the model always includes it, so failure means the VALUE is
// truthy (a non-empty string), never mere key presence. Only then are the
// required data keys checked; a response missing any of them is malformed.
func (c *Client) FetchCareData(ctx context.Context, scientificName string) (*plant.Record, error) {
	name := plant.NormalizeScientificName(scientificName)
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scientific name is empty")
	}

	observability.Fetch().OnFetchStart(ctx, name)
	c.logger.Debug("fetching care data", "plant", name, "model", c.model)

	text, err := c.complete(ctx, carePrompt(name), careMaxTokens, careTemperature)
	if err != nil {
		observability.Fetch().OnFetchComplete(ctx, name, err)
		return nil, err
	}

	rec, err := parseCareResponse(name, text)
	observability.Fetch().OnFetchComplete(ctx, name, err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// parseCareResponse classifies and decodes the model's care payload.
func parseCareResponse(name, text string) (*plant.Record, error) {
	payload, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "decode care response")
	}

	// Error classification comes before structural validation: a recognition
	// failure is a complete, valid response and must not be reported as
	// malformed just because the data keys are absent.
	if msg, failed := truthyError(raw["error"]); failed {
		return nil, errors.New(errors.ErrCodeNotRecognized, "%s", msg)
	}

	for _, key := range requiredCareKeys {
		if _, ok := raw[key]; !ok {
			return nil, errors.New(errors.ErrCodeMalformedResponse, "response missing required field %q", key)
		}
	}

	rec := &plant.Record{
		ScientificName: name,
		CommonName:     stringField(raw, "common_name"),
		Description:    stringField(raw, "description"),
		Light:          stringField(raw, plant.FieldLight),
		Water:          stringField(raw, plant.FieldWater),
		Feeding:        stringField(raw, plant.FieldFeeding),
		Temperature:    stringField(raw, plant.FieldTemperature),
		Humidity:       stringField(raw, plant.FieldHumidity),
		Toxicity:       stringField(raw, plant.FieldToxicity),
	}
	return rec, nil
}

// truthyError reports whether the error value marks a failed response. null,
// a missing key, an empty string and whitespace are all success; any other
// value is failure. Non-string values stringify for the message.
func truthyError(v json.RawMessage) (string, bool) {
	if len(v) == 0 || string(v) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		if !b {
			return "", false
		}
		return "plant not recognized", true
	}
	return string(v), true
}

func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
