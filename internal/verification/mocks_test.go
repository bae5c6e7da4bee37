package verification

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"factcheck/factcheck-backend/internal/claimsearch"
	"factcheck/factcheck-backend/internal/generative"
	"factcheck/factcheck-backend/internal/queries"
)

// MockClaimSearcher is a mock implementation of the ClaimSearcher interface
type MockClaimSearcher struct {
	mock.Mock
}

func (m *MockClaimSearcher) SearchClaims(ctx context.Context, text string) (*claimsearch.Result, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claimsearch.Result), args.Error(1)
}

// MockAnalyzer is a mock implementation of the Analyzer interface
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) AnalyzeClaim(ctx context.Context, text string) (*generative.Analysis, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generative.Analysis), args.Error(1)
}

// MockQueryStore is a mock implementation of the QueryStore interface
type MockQueryStore struct {
	mock.Mock
}

func (m *MockQueryStore) Insert(ctx context.Context, q *queries.Query) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQueryStore) Complete(ctx context.Context, id uuid.UUID, c queries.Completion) error {
	args := m.Called(ctx, id, c)
	return args.Error(0)
}

func (m *MockQueryStore) Fail(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

// MockExtractor is a mock implementation of the TextExtractor interface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	args := m.Called(ctx, rawURL)
	return args.String(0), args.Error(1)
}

func verifiedResult() *claimsearch.Result {
	return &claimsearch.Result{Claims: []claimsearch.Claim{{
		Text:        "La tierra es plana",
		Claimant:    "Blog X",
		Rating:      "Falso",
		ReviewURL:   "https://afp.example/review",
		ReviewTitle: "No, la tierra no es plana",
	}}}
}

func analysis(verdict string, confidence int, reasoning string) *generative.Analysis {
	return &generative.Analysis{
		Verdict:        verdict,
		Confidence:     confidence,
		Reasoning:      reasoning,
		Biases:         []string{},
		Recommendation: "check sources",
		KeyPoints:      []string{},
	}
}
