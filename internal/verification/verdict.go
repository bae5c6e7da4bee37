package verification

import (
	"fmt"
	"strings"
)

// Verdict is a member of the shared taxonomy both backends are mapped into
type Verdict string

const (
	VerdictVerified      Verdict = "verified"
	VerdictProbablyTrue  Verdict = "probably_true"
	VerdictProbablyFalse Verdict = "probably_false"
	VerdictMixed         Verdict = "mixed"
	VerdictNotFound      Verdict = "not_found"
	VerdictCannotVerify  Verdict = "cannot_verify"
	VerdictError         Verdict = "error"
)

// AllVerdicts lists the taxonomy in a stable order
var AllVerdicts = []Verdict{
	VerdictVerified,
	VerdictProbablyTrue,
	VerdictProbablyFalse,
	VerdictMixed,
	VerdictNotFound,
	VerdictCannotVerify,
	VerdictError,
}

// IsValid reports whether v belongs to the taxonomy
func (v Verdict) IsValid() bool {
	for _, known := range AllVerdicts {
		if v == known {
			return true
		}
	}
	return false
}

// claimSearchVocabulary maps the claim-search backend's native labels
var claimSearchVocabulary = map[string]Verdict{
	"verified":      VerdictVerified,
	"verificado":    VerdictVerified,
	"not_found":     VerdictNotFound,
	"no_encontrado": VerdictNotFound,
	"error":         VerdictError,
}

// generativeVocabulary maps the generative backend's native labels
var generativeVocabulary = map[string]Verdict{
	"probably_true":           VerdictProbablyTrue,
	"probablemente_verdadero": VerdictProbablyTrue,
	"probably_false":          VerdictProbablyFalse,
	"probablemente_falso":     VerdictProbablyFalse,
	"false":                   VerdictProbablyFalse,
	"falso":                   VerdictProbablyFalse,
	"mixed":                   VerdictMixed,
	"mixto":                   VerdictMixed,
	"cannot_verify":           VerdictCannotVerify,
	"unverifiable":            VerdictCannotVerify,
	"no_verificable":          VerdictCannotVerify,
	"no_se_puede_verificar":   VerdictCannotVerify,
}

func normalizeLabel(native string) string {
	label := strings.ToLower(strings.TrimSpace(native))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(label)
}

// NormalizeClaimSearch maps a claim-search label into the taxonomy
func NormalizeClaimSearch(native string) (Verdict, error) {
	if v, ok := claimSearchVocabulary[normalizeLabel(native)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown claim-search verdict %q", ErrBackendMalformedResponse, native)
}

// NormalizeGenerative maps a generative label into the taxonomy
func NormalizeGenerative(native string) (Verdict, error) {
	if v, ok := generativeVocabulary[normalizeLabel(native)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown generative verdict %q", ErrBackendMalformedResponse, native)
}

// equivalences pairs verdicts that count as agreement across backends.
// Lookups are symmetric.
var equivalences = [][2]Verdict{
	{VerdictVerified, VerdictProbablyTrue},
	{VerdictNotFound, VerdictCannotVerify},
	{VerdictProbablyFalse, VerdictProbablyFalse},
}

// Equivalent reports whether two verdicts from different backends agree
func Equivalent(a, b Verdict) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	for _, pair := range equivalences {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// Translate picks the verdict reported when both backends agree. The
// generative verdict wins when it is one of the graded ones.
func Translate(claimSearch, generative Verdict) Verdict {
	switch generative {
	case VerdictProbablyTrue, VerdictProbablyFalse, VerdictMixed:
		return generative
	}
	if claimSearch == VerdictVerified {
		return VerdictProbablyTrue
	}
	if generative != "" {
		return generative
	}
	if claimSearch != "" {
		return claimSearch
	}
	return VerdictCannotVerify
}
