package verification

// reasoningTemplates gives one fallback sentence per taxonomy member
var reasoningTemplates = map[Verdict]string{
	VerdictVerified:      "This information has been verified by official fact-checking sources.",
	VerdictProbablyTrue:  "The analysis suggests this claim is probably true based on the available information.",
	VerdictProbablyFalse: "The analysis indicates this claim contains questionable or inaccurate elements.",
	VerdictMixed:         "The claim contains both true and false elements. Further verification is needed.",
	VerdictNotFound:      "No specific fact-checks were found for this claim.",
	VerdictCannotVerify:  "There is not enough information available to verify this claim.",
	VerdictError:         "The analysis could not be completed because of a technical error.",
}

const defaultReasoning = "Analysis completed."

// ResolveReasoning returns the explanation shown to the user. It prefers
// backend-written text and falls back to a template; it never returns "".
func ResolveReasoning(o Outcome) string {
	if o.Analysis != nil && o.Analysis.Reasoning != "" {
		return o.Analysis.Reasoning
	}
	if o.ClaimSearch != nil && o.ClaimSearch.Reasoning != "" {
		return o.ClaimSearch.Reasoning
	}
	if o.SupplementaryAnalysis != nil && o.SupplementaryAnalysis.Reasoning != "" {
		return o.SupplementaryAnalysis.Reasoning
	}
	return TemplateReasoning(o.ResultLabel())
}

// TemplateReasoning returns the fixed sentence for a verdict
func TemplateReasoning(v Verdict) string {
	if text, ok := reasoningTemplates[v]; ok {
		return text
	}
	return defaultReasoning
}
