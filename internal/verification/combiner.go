package verification

const (
	recommendCombinedOfficial = "Verification confirmed by official fact-checking sources."
	recommendHighConfidence   = "High-confidence AI analysis - consider additional verification."
	recommendAgreement        = "Several analysis methods agree on this verdict."
	recommendBestAvailable    = "AI-based analysis - verify with additional sources for confirmation."
	recommendClaimDatabase    = "Based on a search of the fact-checking database."
	recommendRephrase         = "The claim could not be analyzed. Try rephrasing it or using other sources."
)

// highConfidence is the generative confidence that outranks agreement checks
const highConfidence = 7

// Combine reconciles both backends' results. Rules are evaluated in order
// and the first match decides; only the first can set official verification.
func Combine(fc, ai BackendResult) Outcome {
	if fc.Success && fc.Verdict == VerdictVerified {
		out := Outcome{
			FinalVerdict:            VerdictVerified,
			Confidence:              9,
			PrimarySource:           SourceClaimSearch,
			HasOfficialVerification: true,
			Recommendation:          recommendCombinedOfficial,
			ClaimSearch:             fc.Claim,
		}
		if ai.Success {
			out.SupplementaryAnalysis = ai.Analysis
		}
		return out
	}

	if ai.Success && ai.Confidence >= highConfidence {
		return Outcome{
			FinalVerdict:     ai.Verdict,
			Confidence:       ai.Confidence,
			PrimarySource:    SourceGenerative,
			Recommendation:   recommendHighConfidence,
			Analysis:         ai.Analysis,
			PriorClaimSearch: priorClaimSearch(fc),
		}
	}

	if fc.Success && ai.Success && Equivalent(fc.Verdict, ai.Verdict) {
		return Outcome{
			FinalVerdict:   Translate(fc.Verdict, ai.Verdict),
			Confidence:     clampConfidence(max(fc.Confidence, ai.Confidence) + 1),
			PrimarySource:  SourceCombined,
			Recommendation: recommendAgreement,
			ClaimSearch:    fc.Claim,
			Analysis:       ai.Analysis,
		}
	}

	if ai.Success {
		return Outcome{
			FinalVerdict:     ai.Verdict,
			Confidence:       ai.Confidence,
			PrimarySource:    SourceGenerative,
			Recommendation:   recommendBestAvailable,
			Analysis:         ai.Analysis,
			PriorClaimSearch: priorClaimSearch(fc),
		}
	}

	if fc.Success {
		confidence := 8
		if fc.Verdict == VerdictNotFound {
			confidence = 6
		}
		return Outcome{
			FinalVerdict:   fc.Verdict,
			Confidence:     confidence,
			PrimarySource:  SourceClaimSearch,
			Recommendation: recommendClaimDatabase,
			ClaimSearch:    fc.Claim,
		}
	}

	return failureOutcome(recommendRephrase)
}
