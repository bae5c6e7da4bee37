package generative

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnavailable is returned when the provider cannot be reached or
	// rejects the request.
	ErrUnavailable = errors.New("generative backend unavailable")
	// ErrMalformedResponse is returned when the provider answers with
	// something that is not a usable analysis.
	ErrMalformedResponse = errors.New("generative backend returned a malformed response")
)

// Analysis is a provider's structured answer about one claim. Verdict is in
// the provider's native vocabulary and is normalized by the caller.
type Analysis struct {
	Verdict        string   `json:"verdict"`
	Confidence     int      `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	Biases         []string `json:"biases"`
	Recommendation string   `json:"recommendation"`
	KeyPoints      []string `json:"key_points"`
}

const promptTemplate = `You are a professional fact-checker. Analyze the following claim and answer ONLY with valid JSON of this exact shape:

{
  "verdict": "probably_true|probably_false|mixed|cannot_verify",
  "confidence": 1-10,
  "reasoning": "short explanation of your analysis",
  "biases": ["possible biases detected"],
  "recommendation": "recommendation for the reader",
  "key_points": ["important elements identified"]
}

Instructions:
- Be objective and rely on well-established facts.
- If the claim mixes true and false elements, use "mixed".
- If specific context is missing, use "cannot_verify".
- Point out emotional or sensationalist language.

Claim to verify: %q`

// BuildPrompt renders the instruction sent to every provider
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

type rawAnalysis struct {
	Verdict        string          `json:"verdict"`
	Confidence     json.RawMessage `json:"confidence"`
	Reasoning      string          `json:"reasoning"`
	Biases         []string        `json:"biases"`
	Recommendation string          `json:"recommendation"`
	KeyPoints      []string        `json:"key_points"`
}

// ParseAnalysis decodes a provider reply, tolerating markdown code fences
// around the JSON body.
func ParseAnalysis(reply string) (*Analysis, error) {
	body := stripFences(reply)
	if body == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(raw.Verdict) == "" {
		return nil, fmt.Errorf("%w: missing verdict", ErrMalformedResponse)
	}

	confidence, err := parseConfidence(raw.Confidence)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &Analysis{
		Verdict:        strings.TrimSpace(raw.Verdict),
		Confidence:     confidence,
		Reasoning:      strings.TrimSpace(raw.Reasoning),
		Biases:         nonNil(raw.Biases),
		Recommendation: strings.TrimSpace(raw.Recommendation),
		KeyPoints:      nonNil(raw.KeyPoints),
	}, nil
}

func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseConfidence accepts integers, floats and numeric strings and
// saturates the value to 0..10. The field is mandatory.
func parseConfidence(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing confidence")
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("confidence is not a number: %s", raw)
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("confidence is not a number: %q", s)
		}
	}

	c := int(math.Round(f))
	switch {
	case c < 0:
		return 0, nil
	case c > 10:
		return 10, nil
	}
	return c, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
