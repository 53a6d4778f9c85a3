package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// textSentinel is the fallback value for text fields the backend could not
// determine. Cost falls back to 0.
const textSentinel = "N/A"

// parseReceiptFields parses the JSON response from an extraction backend
func parseReceiptFields(text string) (*ReceiptFields, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var fields ReceiptFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// The backend is instructed to supply sentinels itself; missing or null
	// text fields are normalized here so every stored record is fully
	// populated. Dates stay opaque text, no format validation.
	fields.Date = textOrSentinel(fields.Date)
	fields.CompanyName = textOrSentinel(fields.CompanyName)
	fields.Category = textOrSentinel(fields.Category)
	fields.MealType = textOrSentinel(fields.MealType)
	if fields.Cost < 0 {
		fields.Cost = 0
	}

	return &fields, nil
}

func textOrSentinel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return textSentinel
	}
	return s
}
