package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquivalent(t *testing.T) {
	assert.True(t, Equivalent(VerdictVerified, VerdictProbablyTrue))
	assert.True(t, Equivalent(VerdictProbablyTrue, VerdictVerified))
	assert.True(t, Equivalent(VerdictNotFound, VerdictCannotVerify))
	assert.True(t, Equivalent(VerdictProbablyFalse, VerdictProbablyFalse))
	assert.True(t, Equivalent(VerdictMixed, VerdictMixed))

	assert.False(t, Equivalent(VerdictProbablyFalse, VerdictProbablyTrue))
	assert.False(t, Equivalent(VerdictVerified, VerdictProbablyFalse))
	assert.False(t, Equivalent(VerdictNotFound, VerdictMixed))
	assert.False(t, Equivalent("", ""))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		claimSearch, generative, want Verdict
	}{
		{VerdictVerified, VerdictProbablyFalse, VerdictProbablyFalse},
		{VerdictVerified, VerdictProbablyTrue, VerdictProbablyTrue},
		{VerdictNotFound, VerdictMixed, VerdictMixed},
		{VerdictVerified, VerdictCannotVerify, VerdictProbablyTrue},
		{VerdictNotFound, VerdictCannotVerify, VerdictCannotVerify},
		{VerdictNotFound, "", VerdictNotFound},
		{"", "", VerdictCannotVerify},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Translate(tt.claimSearch, tt.generative), "%s/%s", tt.claimSearch, tt.generative)
	}
}

func TestNormalizeClaimSearch(t *testing.T) {
	for native, want := range map[string]Verdict{
		"verified":      VerdictVerified,
		"Verificado":    VerdictVerified,
		"not_found":     VerdictNotFound,
		"no encontrado": VerdictNotFound,
		"error":         VerdictError,
	} {
		got, err := NormalizeClaimSearch(native)
		require.NoError(t, err, native)
		assert.Equal(t, want, got, native)
	}

	_, err := NormalizeClaimSearch("probably_true")
	assert.ErrorIs(t, err, ErrBackendMalformedResponse)
}

func TestNormalizeGenerative(t *testing.T) {
	for native, want := range map[string]Verdict{
		"probably_true":           VerdictProbablyTrue,
		"probablemente_verdadero": VerdictProbablyTrue,
		"Probably-False":          VerdictProbablyFalse,
		"falso":                   VerdictProbablyFalse,
		" mixto ":                 VerdictMixed,
		"no_verificable":          VerdictCannotVerify,
		"cannot verify":           VerdictCannotVerify,
	} {
		got, err := NormalizeGenerative(native)
		require.NoError(t, err, native)
		assert.Equal(t, want, got, native)
	}

	for _, bad := range []string{"", "verified", "true-ish"} {
		_, err := NormalizeGenerative(bad)
		assert.ErrorIs(t, err, ErrBackendMalformedResponse, bad)
	}
}

func TestVerdictIsValid(t *testing.T) {
	for _, v := range AllVerdicts {
		assert.True(t, v.IsValid())
	}
	assert.False(t, Verdict("verificado").IsValid())
}
