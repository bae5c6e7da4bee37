package verification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fcResult(verdict Verdict) BackendResult {
	confidence := 5
	if verdict == VerdictVerified {
		confidence = 8
	}
	return BackendResult{
		Backend:    BackendClaimSearch,
		Success:    true,
		Verdict:    verdict,
		Confidence: confidence,
		Claim:      &ClaimDetail{Claim: "c", Reasoning: "review title"},
	}
}

func aiResult(verdict Verdict, confidence int) BackendResult {
	return BackendResult{
		Backend:    BackendGenerative,
		Success:    true,
		Verdict:    verdict,
		Confidence: confidence,
		Analysis:   &AnalysisDetail{Reasoning: "model says so"},
	}
}

func failed(backend Backend) BackendResult {
	return BackendResult{Backend: backend, Failure: FailureUnavailable, Err: errors.New("timeout")}
}

func TestCombine_OfficialVerification(t *testing.T) {
	ai := aiResult(VerdictProbablyFalse, 10)
	out := Combine(fcResult(VerdictVerified), ai)

	assert.Equal(t, VerdictVerified, out.FinalVerdict)
	assert.Equal(t, 9, out.Confidence)
	assert.True(t, out.HasOfficialVerification)
	assert.Equal(t, SourceClaimSearch, out.PrimarySource)
	assert.Equal(t, ai.Analysis, out.SupplementaryAnalysis)
	assert.Nil(t, out.Analysis)
}

func TestCombine_OfficialVerificationWithoutGenerative(t *testing.T) {
	out := Combine(fcResult(VerdictVerified), failed(BackendGenerative))

	assert.True(t, out.HasOfficialVerification)
	assert.Equal(t, 9, out.Confidence)
	assert.Nil(t, out.SupplementaryAnalysis)
}

func TestCombine_HighConfidenceGenerative(t *testing.T) {
	out := Combine(failed(BackendClaimSearch), aiResult(VerdictProbablyFalse, 8))

	assert.Equal(t, VerdictProbablyFalse, out.FinalVerdict)
	assert.Equal(t, 8, out.Confidence)
	assert.Equal(t, SourceGenerative, out.PrimarySource)
	assert.False(t, out.HasOfficialVerification)
	assert.Equal(t, VerdictNotFound, out.PriorClaimSearch)
}

func TestCombine_Agreement(t *testing.T) {
	out := Combine(fcResult(VerdictNotFound), aiResult(VerdictCannotVerify, 5))

	assert.Equal(t, VerdictCannotVerify, out.FinalVerdict)
	assert.Equal(t, 6, out.Confidence)
	assert.Equal(t, SourceCombined, out.PrimarySource)
	assert.NotNil(t, out.ClaimSearch)
	assert.NotNil(t, out.Analysis)
}

func TestCombine_AgreementConfidenceSaturates(t *testing.T) {
	fc := fcResult(VerdictNotFound)
	fc.Confidence = 10
	out := Combine(fc, aiResult(VerdictCannotVerify, 6))

	assert.Equal(t, SourceCombined, out.PrimarySource)
	assert.Equal(t, 10, out.Confidence)
}

func TestCombine_BestAvailableGenerative(t *testing.T) {
	out := Combine(fcResult(VerdictNotFound), aiResult(VerdictMixed, 4))

	assert.Equal(t, VerdictMixed, out.FinalVerdict)
	assert.Equal(t, 4, out.Confidence)
	assert.Equal(t, SourceGenerative, out.PrimarySource)
	assert.Equal(t, VerdictNotFound, out.PriorClaimSearch)
}

func TestCombine_ClaimSearchOnly(t *testing.T) {
	out := Combine(fcResult(VerdictNotFound), failed(BackendGenerative))

	assert.Equal(t, VerdictNotFound, out.FinalVerdict)
	assert.Equal(t, 6, out.Confidence)
	assert.Equal(t, SourceClaimSearch, out.PrimarySource)
}

func TestCombine_BothFailed(t *testing.T) {
	out := Combine(failed(BackendClaimSearch), failed(BackendGenerative))

	assert.Equal(t, VerdictCannotVerify, out.FinalVerdict)
	assert.Equal(t, 0, out.Confidence)
	assert.Equal(t, SourceError, out.PrimarySource)
	assert.Equal(t, VerdictError, out.ResultLabel())
	assert.NotEmpty(t, out.Recommendation)
}

func TestResultLabel_UnknownVerdictIsError(t *testing.T) {
	assert.Equal(t, VerdictError, Outcome{FinalVerdict: "verificado", PrimarySource: SourceGenerative}.ResultLabel())
	assert.Equal(t, VerdictError, Outcome{PrimarySource: SourceClaimSearch}.ResultLabel())
	assert.Equal(t, VerdictMixed, Outcome{FinalVerdict: VerdictMixed, PrimarySource: SourceGenerative}.ResultLabel())
}
