package generative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	reply := "```json\n" + `{
		"verdict": "probably_false",
		"confidence": 8,
		"reasoning": "No scientific evidence supports it.",
		"biases": ["alarmist tone"],
		"recommendation": "Check health authorities.",
		"key_points": ["vaccines", "fertility"]
	}` + "\n```"

	a, err := ParseAnalysis(reply)

	require.NoError(t, err)
	assert.Equal(t, &Analysis{
		Verdict:        "probably_false",
		Confidence:     8,
		Reasoning:      "No scientific evidence supports it.",
		Biases:         []string{"alarmist tone"},
		Recommendation: "Check health authorities.",
		KeyPoints:      []string{"vaccines", "fertility"},
	}, a)
}

func TestParseAnalysis_Confidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"integer", `7`, 7},
		{"float rounds", `6.6`, 7},
		{"string", `"9"`, 9},
		{"above range", `15`, 10},
		{"below range", `-3`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAnalysis(`{"verdict":"mixed","confidence":` + tt.raw + `}`)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Confidence)
			assert.NotNil(t, a.Biases)
			assert.NotNil(t, a.KeyPoints)
		})
	}
}

func TestParseAnalysis_Malformed(t *testing.T) {
	for name, reply := range map[string]string{
		"empty":           "",
		"fences only":     "```json\n```",
		"not json":        "I think it is false.",
		"missing verdict": `{"confidence": 5, "reasoning": "x"}`,
		"bad confidence":  `{"verdict": "mixed", "confidence": "high"}`,
		"no confidence":   `{"verdict": "probably_false", "reasoning": "x"}`,
		"null confidence": `{"verdict": "probably_false", "confidence": null}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnalysis(reply)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(`La "vacuna" causa X`)
	assert.Contains(t, p, `"La \"vacuna\" causa X"`)
	assert.Contains(t, p, "probably_true|probably_false|mixed|cannot_verify")
}
