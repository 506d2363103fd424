package anthropic

import (
	"context"
	"encoding/json"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

const (
	verifyMaxTokens   = 2048
	verifyTemperature = 0.2
)

// Correction is one model-verified change suggestion for a stored record.
type Correction struct {
	Plant            string   `json:"plant"`
	Field            string   `json:"field"`
	CurrentValue     string   `json:"current_value"`
	SuggestedValue   string   `json:"suggested_value"`
	Verification     string   `json:"verification"` // "agree" or "disagree"
	Reasoning        string   `json:"reasoning"`
	Citations        []string `json:"citations"`
	RecommendedValue string   `json:"recommended_value"`
}

// Agreed reports whether the model endorsed the suggested change.
func (c Correction) Agreed() bool {
	return c.Verification == "agree"
}

// VerifyResult is the model's assessment of a piece of user feedback.
type VerifyResult struct {
	ResponseText string       `json:"response_text"`
	Corrections  []Correction `json:"corrections"`
}

// VerifyFeedback asks the model to check user feedback against the stored
// records. When selected is non-empty the prompt narrows to that plant;
// otherwise all records are offered as context.
func (c *Client) VerifyFeedback(ctx context.Context, feedback string, records []plant.Record, selected string) (*VerifyResult, error) {
	if feedback == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "feedback is empty")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no plants in database to verify against")
	}

	c.logger.Debug("verifying feedback", "plants", len(records), "selected", selected)

	text, err := c.complete(ctx, verifyPrompt(feedback, records, selected), verifyMaxTokens, verifyTemperature)
	if err != nil {
		return nil, err
	}

	payload, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var result VerifyResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "decode verification response")
	}
	if result.ResponseText == "" {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "verification response missing response_text")
	}
	return &result, nil
}
