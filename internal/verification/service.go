package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"factcheck/factcheck-backend/internal/queries"
)

// QueryStore is the part of the query repository the orchestrator writes to
type QueryStore interface {
	Insert(ctx context.Context, q *queries.Query) error
	Complete(ctx context.Context, id uuid.UUID, c queries.Completion) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
}

// TextExtractor turns the page behind a URL into plain text
type TextExtractor interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// ServiceConfig tunes the orchestrator
type ServiceConfig struct {
	// StoredReasoningLimit bounds the generative reasoning kept in the
	// persisted summary, in characters.
	StoredReasoningLimit int
	// ResponseTextLimit bounds the echo of the query text in responses.
	ResponseTextLimit int
}

// DefaultServiceConfig returns the stock limits
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		StoredReasoningLimit: 500,
		ResponseTextLimit:    500,
	}
}

const probeText = "Connection test"

// Service orchestrates one verification from raw input to persisted outcome
type Service struct {
	store     QueryStore
	extractor TextExtractor
	selector  *ModeSelector
	executor  *Executor
	sanitizer *bluemonday.Policy
	config    ServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new verification service
func NewService(
	store QueryStore,
	extractor TextExtractor,
	selector *ModeSelector,
	executor *Executor,
	config ServiceConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultServiceConfig()
	if config.StoredReasoningLimit <= 0 {
		config.StoredReasoningLimit = defaults.StoredReasoningLimit
	}
	if config.ResponseTextLimit <= 0 {
		config.ResponseTextLimit = defaults.ResponseTextLimit
	}
	return &Service{
		store:     store,
		extractor: extractor,
		selector:  selector,
		executor:  executor,
		sanitizer: bluemonday.StrictPolicy(),
		config:    config,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Verify runs the full pipeline for req. Invalid input, URL extraction
// failures and a failed initial insert are returned as errors; every later
// failure is reported inside the response.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeAuto
	}
	if _, explicit := mode.Strategy(); !explicit && mode != ModeAuto {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}

	text, err := s.composeText(ctx, req)
	if err != nil {
		return nil, err
	}

	record := &queries.Query{
		ID:        uuid.New(),
		Text:      text,
		URL:       optional(req.URL),
		UserID:    optional(req.UserID),
		DeviceID:  optional(req.DeviceID),
		Mode:      string(mode),
		Result:    queries.ResultProcessing,
		CreatedAt: s.now(),
	}
	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.Error("Failed to record query", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("Starting hybrid verification",
		zap.String("query_id", record.ID.String()),
		zap.String("mode", string(mode)),
		zap.String("text", truncate(text, 100)))

	strategy := s.resolveStrategy(mode, req.UseGenerative, text)

	resp, err := s.run(ctx, record, strategy)
	if err != nil {
		return s.fail(ctx, record, strategy, err), nil
	}

	s.logger.Info("Verification completed",
		zap.String("query_id", record.ID.String()),
		zap.String("result", string(resp.Result)),
		zap.Int("confidence", resp.Confidence),
		zap.String("primary_source", string(resp.PrimarySource)))

	return resp, nil
}

// CheckGenerative probes the generative backend with a fixed text
func (s *Service) CheckGenerative(ctx context.Context) error {
	if s.executor.analyzer == nil {
		return fmt.Errorf("%w: generative analysis is not configured", ErrBackendUnavailable)
	}
	if _, err := s.executor.analyzer.AnalyzeClaim(ctx, probeText); err != nil {
		return err
	}
	return nil
}

func (s *Service) resolveStrategy(mode Mode, useGenerative bool, text string) Strategy {
	if !useGenerative {
		return StrategyClaimSearchOnly
	}
	if strategy, ok := mode.Strategy(); ok {
		return strategy
	}
	strategy := s.selector.Select(text)
	s.logger.Info("Auto mode selected strategy", zap.Stringer("strategy", strategy))
	return strategy
}

func (s *Service) run(ctx context.Context, record *queries.Query, strategy Strategy) (resp *VerifyResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnclassified, r)
		}
	}()

	outcome, err := s.executor.Execute(ctx, strategy, record.Text)
	if err != nil {
		return nil, err
	}
	outcome.Reasoning = ResolveReasoning(outcome)

	processedAt := s.now()
	persisted := true
	summary, err := s.summarize(outcome, strategy, processedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnclassified, err)
	}
	completion := queries.Completion{
		Result:        string(outcome.ResultLabel()),
		Confidence:    outcome.Confidence,
		PrimarySource: string(outcome.PrimarySource),
		Strategy:      strategy.String(),
		Summary:       summary,
	}
	if err := s.store.Complete(ctx, record.ID, completion); err != nil {
		persisted = false
		s.logger.Error("Failed to persist verification outcome; query left in processing state",
			zap.String("query_id", record.ID.String()),
			zap.Error(err))
	}

	return &VerifyResponse{
		Success:     true,
		QueryID:     record.ID,
		ProcessedAt: processedAt,
		ModeUsed:    strategy,
		Text:        truncate(record.Text, s.config.ResponseTextLimit),
		Result:      outcome.ResultLabel(),
		Persisted:   persisted,
		Outcome:     outcome,
	}, nil
}

func (s *Service) fail(ctx context.Context, record *queries.Query, strategy Strategy, cause error) *VerifyResponse {
	s.logger.Error("Hybrid verification failed",
		zap.String("query_id", record.ID.String()),
		zap.Error(cause))

	persisted := true
	message := fmt.Sprintf("hybrid verification error: %v", cause)
	if err := s.store.Fail(ctx, record.ID, message); err != nil {
		persisted = false
		s.logger.Error("Failed to mark query as errored",
			zap.String("query_id", record.ID.String()),
			zap.Error(err))
	}

	return &VerifyResponse{
		Success:     false,
		QueryID:     record.ID,
		ProcessedAt: s.now(),
		ModeUsed:    strategy,
		Text:        truncate(record.Text, s.config.ResponseTextLimit),
		Result:      VerdictError,
		Persisted:   persisted,
		Error:       cause.Error(),
		Outcome: Outcome{
			FinalVerdict:  VerdictError,
			Confidence:    0,
			PrimarySource: SourceError,
			Reasoning:     TemplateReasoning(VerdictError),
		},
	}
}

func (s *Service) composeText(ctx context.Context, req VerifyRequest) (string, error) {
	text := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(req.Text)))

	if req.URL != "" {
		if s.extractor == nil {
			return "", fmt.Errorf("%w: url extraction is not configured", ErrExtraction)
		}
		extracted, err := s.extractor.Extract(ctx, req.URL)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrExtraction, err)
		}
		if text != "" {
			text = text + " " + extracted
		} else {
			text = extracted
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	return text, nil
}

// storedSummary is the projection of an outcome kept with the query record
type storedSummary struct {
	PrimarySource           PrimarySource   `json:"primary_source"`
	FinalVerdict            Verdict         `json:"final_verdict"`
	Confidence              int             `json:"confidence"`
	HasOfficialVerification bool            `json:"has_official_verification"`
	Strategy                string          `json:"strategy"`
	Timestamp               time.Time       `json:"timestamp"`
	ClaimSearch             *ClaimDetail    `json:"claim_search,omitempty"`
	Analysis                *AnalysisDetail `json:"generative_analysis,omitempty"`
}

func (s *Service) summarize(o Outcome, strategy Strategy, at time.Time) (datatypes.JSON, error) {
	summary := storedSummary{
		PrimarySource:           o.PrimarySource,
		FinalVerdict:            o.FinalVerdict,
		Confidence:              o.Confidence,
		HasOfficialVerification: o.HasOfficialVerification,
		Strategy:                strategy.String(),
		Timestamp:               at,
		ClaimSearch:             o.ClaimSearch,
	}
	if o.Analysis != nil {
		trimmed := *o.Analysis
		trimmed.Reasoning = truncate(trimmed.Reasoning, s.config.StoredReasoningLimit)
		summary.Analysis = &trimmed
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return datatypes.JSON(data), nil
}

// truncate cuts s to limit characters, marking the cut with "..."
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
