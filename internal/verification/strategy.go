package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"factcheck/factcheck-backend/internal/claimsearch"
	"factcheck/factcheck-backend/internal/generative"
)

// Strategy is one of the fixed procedures for consulting the backends
type Strategy int

const (
	StrategyClaimSearchFirst Strategy = iota + 1
	StrategyGenerativeFirst
	StrategyGenerativeOnly
	StrategyClaimSearchOnly
	StrategyCombined
)

var strategyNames = map[Strategy]string{
	StrategyClaimSearchFirst: "claim_search_first",
	StrategyGenerativeFirst:  "generative_first",
	StrategyGenerativeOnly:   "generative_only",
	StrategyClaimSearchOnly:  "claim_search_only",
	StrategyCombined:         "combined",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the strategy by name in JSON payloads
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode is the processing mode requested by a caller
type Mode string

const (
	ModeAuto             Mode = "auto"
	ModeClaimSearchFirst Mode = "claim_search_first"
	ModeGenerativeFirst  Mode = "generative_first"
	ModeGenerativeOnly   Mode = "generative_only"
	ModeClaimSearchOnly  Mode = "claim_search_only"
	ModeCombined         Mode = "combined"
)

var modeAliases = map[string]Mode{
	"":                   ModeAuto,
	"auto":               ModeAuto,
	"claim_search_first": ModeClaimSearchFirst,
	"factcheck_first":    ModeClaimSearchFirst,
	"generative_first":   ModeGenerativeFirst,
	"ia_first":           ModeGenerativeFirst,
	"generative_only":    ModeGenerativeOnly,
	"solo_ia":            ModeGenerativeOnly,
	"claim_search_only":  ModeClaimSearchOnly,
	"solo_factcheck":     ModeClaimSearchOnly,
	"combined":           ModeCombined,
	"balanced":           ModeCombined,
}

var modeStrategies = map[Mode]Strategy{
	ModeClaimSearchFirst: StrategyClaimSearchFirst,
	ModeGenerativeFirst:  StrategyGenerativeFirst,
	ModeGenerativeOnly:   StrategyGenerativeOnly,
	ModeClaimSearchOnly:  StrategyClaimSearchOnly,
	ModeCombined:         StrategyCombined,
}

// ParseMode resolves a caller-supplied mode name, including legacy aliases
func ParseMode(name string) (Mode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, name)
}

// Strategy returns the fixed strategy for an explicit mode. Auto has none.
func (m Mode) Strategy() (Strategy, bool) {
	s, ok := modeStrategies[m]
	return s, ok
}

// ClaimSearcher looks up previously published fact-checks
type ClaimSearcher interface {
	SearchClaims(ctx context.Context, text string) (*claimsearch.Result, error)
}

// Analyzer produces a generative verdict for arbitrary text
type Analyzer interface {
	AnalyzeClaim(ctx context.Context, text string) (*generative.Analysis, error)
}

const (
	recommendOfficial        = "This claim has been verified by official fact-checking sources."
	recommendGenerativeFirst = "AI-based analysis - consider checking with official sources."
	recommendFallback        = "AI-based analysis - verify with additional sources."
	recommendClaimSearchOnly = "Result based on existing fact-checks."
	recommendNoFactChecks    = "No existing fact-checks were found for this claim."
	recommendUnverifiable    = "The claim could not be verified. Try other sources."
)

type strategyFunc func(e *Executor, ctx context.Context, text string) Outcome

var strategyTable = map[Strategy]strategyFunc{
	StrategyClaimSearchFirst: (*Executor).claimSearchFirst,
	StrategyGenerativeFirst:  (*Executor).generativeFirst,
	StrategyGenerativeOnly:   (*Executor).generativeFirst,
	StrategyClaimSearchOnly:  (*Executor).claimSearchOnly,
	StrategyCombined:         (*Executor).combined,
}

// Executor runs strategies against the backend collaborators. A nil
// analyzer means generative analysis is unavailable in this process.
type Executor struct {
	claims   ClaimSearcher
	analyzer Analyzer
	logger   *zap.Logger
}

// NewExecutor creates a new strategy executor
func NewExecutor(claims ClaimSearcher, analyzer Analyzer, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		claims:   claims,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Execute runs strategy over text. Backend failures are folded into the
// outcome; only an unknown strategy is reported as an error.
func (e *Executor) Execute(ctx context.Context, strategy Strategy, text string) (Outcome, error) {
	run, ok := strategyTable[strategy]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unknown strategy %d", ErrUnclassified, int(strategy))
	}

	e.logger.Debug("Executing strategy", zap.Stringer("strategy", strategy))

	outcome := run(e, ctx, text)
	outcome.Confidence = clampConfidence(outcome.Confidence)
	return outcome, nil
}

func (e *Executor) claimSearchFirst(ctx context.Context, text string) Outcome {
	fc := e.searchClaims(ctx, text)
	if fc.Success && fc.Verdict == VerdictVerified {
		return Outcome{
			FinalVerdict:            VerdictVerified,
			Confidence:              9,
			PrimarySource:           SourceClaimSearch,
			HasOfficialVerification: true,
			Recommendation:          recommendOfficial,
			ClaimSearch:             fc.Claim,
		}
	}

	ai := e.analyze(ctx, text)
	if ai.Success {
		return Outcome{
			FinalVerdict:     ai.Verdict,
			Confidence:       ai.Confidence,
			PrimarySource:    SourceGenerativeFallback,
			Recommendation:   recommendFallback,
			Analysis:         ai.Analysis,
			PriorClaimSearch: priorClaimSearch(fc),
		}
	}

	e.logger.Warn("Both backends failed",
		zap.String("claim_search_failure", string(fc.Failure)),
		zap.String("generative_failure", string(ai.Failure)))
	return failureOutcome(recommendUnverifiable)
}

func (e *Executor) generativeFirst(ctx context.Context, text string) Outcome {
	ai := e.analyze(ctx, text)
	if ai.Success {
		return Outcome{
			FinalVerdict:   ai.Verdict,
			Confidence:     ai.Confidence,
			PrimarySource:  SourceGenerative,
			Recommendation: recommendGenerativeFirst,
			Analysis:       ai.Analysis,
		}
	}
	return failureOutcome(recommendUnverifiable)
}

func (e *Executor) claimSearchOnly(ctx context.Context, text string) Outcome {
	fc := e.searchClaims(ctx, text)
	if !fc.Success {
		return Outcome{
			FinalVerdict:   VerdictNotFound,
			Confidence:     0,
			PrimarySource:  SourceClaimSearch,
			Recommendation: recommendNoFactChecks,
		}
	}

	confidence := 5
	if fc.Verdict == VerdictVerified {
		confidence = 8
	}
	return Outcome{
		FinalVerdict:            fc.Verdict,
		Confidence:              confidence,
		PrimarySource:           SourceClaimSearch,
		HasOfficialVerification: fc.Verdict == VerdictVerified,
		Recommendation:          recommendClaimSearchOnly,
		ClaimSearch:             fc.Claim,
	}
}

// combined consults both backends concurrently and waits for both before
// handing the results to the combiner. A panic in either call is re-raised
// on the calling goroutine once both have finished.
func (e *Executor) combined(ctx context.Context, text string) Outcome {
	var fc, ai BackendResult
	var fcPanic, aiPanic any
	var g errgroup.Group
	g.Go(func() error {
		defer func() { fcPanic = recover() }()
		fc = e.searchClaims(ctx, text)
		return nil
	})
	g.Go(func() error {
		defer func() { aiPanic = recover() }()
		ai = e.analyze(ctx, text)
		return nil
	})
	_ = g.Wait()

	if fcPanic != nil {
		panic(fcPanic)
	}
	if aiPanic != nil {
		panic(aiPanic)
	}
	return Combine(fc, ai)
}

func (e *Executor) searchClaims(ctx context.Context, text string) BackendResult {
	result := BackendResult{Backend: BackendClaimSearch}
	if e.claims == nil {
		result.Failure = FailureDisabled
		result.Err = fmt.Errorf("%w: claim search is not configured", ErrBackendUnavailable)
		return result
	}

	res, err := e.claims.SearchClaims(ctx, text)
	if err != nil {
		result.Failure = classifyFailure(err)
		result.Err = err
		e.logger.Warn("Claim search failed", zap.Error(err))
		return result
	}

	verdict, err := NormalizeClaimSearch(res.Verdict())
	if err != nil {
		result.Failure = FailureMalformed
		result.Err = err
		return result
	}

	result.Success = true
	result.Verdict = verdict
	result.Confidence = 5
	if verdict == VerdictVerified {
		result.Confidence = 8
	}
	if claim, ok := res.First(); ok {
		result.Claim = &ClaimDetail{
			Claim:     claim.Text,
			Claimant:  claim.Claimant,
			Rating:    claim.Rating,
			ReviewURL: claim.ReviewURL,
			Reasoning: claim.ReviewTitle,
		}
	}
	return result
}

func (e *Executor) analyze(ctx context.Context, text string) BackendResult {
	result := BackendResult{Backend: BackendGenerative}
	if e.analyzer == nil {
		result.Failure = FailureDisabled
		result.Err = fmt.Errorf("%w: generative analysis is not configured", ErrBackendUnavailable)
		return result
	}

	analysis, err := e.analyzer.AnalyzeClaim(ctx, text)
	if err != nil {
		result.Failure = classifyFailure(err)
		result.Err = err
		e.logger.Warn("Generative analysis failed", zap.Error(err))
		return result
	}

	verdict, err := NormalizeGenerative(analysis.Verdict)
	if err != nil {
		result.Failure = FailureMalformed
		result.Err = err
		e.logger.Warn("Generative analysis returned an unknown verdict", zap.Error(err))
		return result
	}

	result.Success = true
	result.Verdict = verdict
	result.Confidence = clampConfidence(analysis.Confidence)
	result.Analysis = &AnalysisDetail{
		Reasoning:      analysis.Reasoning,
		Biases:         analysis.Biases,
		Recommendation: analysis.Recommendation,
		KeyPoints:      analysis.KeyPoints,
	}
	return result
}

func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrBackendMalformedResponse), errors.Is(err, generative.ErrMalformedResponse):
		return FailureMalformed
	default:
		return FailureUnavailable
	}
}

func priorClaimSearch(fc BackendResult) Verdict {
	if fc.Success {
		return fc.Verdict
	}
	return VerdictNotFound
}

func failureOutcome(recommendation string) Outcome {
	return Outcome{
		FinalVerdict:   VerdictCannotVerify,
		Confidence:     0,
		PrimarySource:  SourceError,
		Recommendation: recommendation,
	}
}

func clampConfidence(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 10:
		return 10
	default:
		return c
	}
}
