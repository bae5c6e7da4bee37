package verification

import (
	"time"

	"github.com/google/uuid"
)

// Backend identifies one of the two verification collaborators
type Backend string

const (
	BackendClaimSearch Backend = "claim_search"
	BackendGenerative  Backend = "generative"
)

// PrimarySource records which backend decided an outcome
type PrimarySource string

const (
	SourceClaimSearch        PrimarySource = "claim_search"
	SourceGenerative         PrimarySource = "generative"
	SourceGenerativeFallback PrimarySource = "generative_fallback"
	SourceCombined           PrimarySource = "combined"
	SourceError              PrimarySource = "error"
)

// ClaimDetail is the trimmed projection of the first matching fact-check claim
type ClaimDetail struct {
	Claim     string `json:"claim"`
	Claimant  string `json:"claimant"`
	Rating    string `json:"rating"`
	ReviewURL string `json:"review_url"`
	Reasoning string `json:"reasoning,omitempty"`
}

// AnalysisDetail is the structured part of a generative analysis
type AnalysisDetail struct {
	Reasoning      string   `json:"reasoning"`
	Biases         []string `json:"biases"`
	Recommendation string   `json:"recommendation"`
	KeyPoints      []string `json:"key_points"`
}

// BackendResult is the outcome of invoking a single backend. Exactly one of
// Claim or Analysis is set on success, depending on Backend.
type BackendResult struct {
	Backend    Backend
	Success    bool
	Verdict    Verdict
	Confidence int
	Claim      *ClaimDetail
	Analysis   *AnalysisDetail
	Failure    FailureKind
	Err        error
}

// Outcome is the combined decision for one query
type Outcome struct {
	FinalVerdict            Verdict         `json:"final_verdict"`
	Confidence              int             `json:"confidence"`
	PrimarySource           PrimarySource   `json:"primary_source"`
	HasOfficialVerification bool            `json:"has_official_verification"`
	Recommendation          string          `json:"recommendation"`
	Reasoning               string          `json:"reasoning"`
	ClaimSearch             *ClaimDetail    `json:"claim_search,omitempty"`
	Analysis                *AnalysisDetail `json:"generative_analysis,omitempty"`
	SupplementaryAnalysis   *AnalysisDetail `json:"supplementary_analysis,omitempty"`
	PriorClaimSearch        Verdict         `json:"prior_claim_search,omitempty"`
}

// ResultLabel is the value stored as the query's result. A total backend
// failure is recorded as "error" even though the verdict is cannot_verify,
// and so is any verdict outside the taxonomy.
func (o Outcome) ResultLabel() Verdict {
	if o.PrimarySource == SourceError || !o.FinalVerdict.IsValid() {
		return VerdictError
	}
	return o.FinalVerdict
}

// VerifyRequest is one verification request as received from a caller
type VerifyRequest struct {
	Text          string
	URL           string
	UserID        string
	DeviceID      string
	Mode          Mode
	UseGenerative bool
}

// VerifyResponse is the payload returned to the caller
type VerifyResponse struct {
	Success     bool      `json:"success"`
	QueryID     uuid.UUID `json:"query_id"`
	ProcessedAt time.Time `json:"processed_at"`
	ModeUsed    Strategy  `json:"mode_used"`
	Text        string    `json:"text"`
	Result      Verdict   `json:"result"`
	Persisted   bool      `json:"persisted"`
	Error       string    `json:"error,omitempty"`

	Outcome
}
