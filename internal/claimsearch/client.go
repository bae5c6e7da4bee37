package claimsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	factchecktools "google.golang.org/api/factchecktools/v1alpha1"
	"google.golang.org/api/option"
)

// ErrUnavailable is returned when the fact-check service cannot be reached
// or answers with a non-success status.
var ErrUnavailable = errors.New("claim search unavailable")

const (
	VerdictVerified = "verified"
	VerdictNotFound = "not_found"

	unknownClaimant = "Unknown source"
	unknownRating   = "Not available"
)

// Config holds the claim search client settings
type Config struct {
	APIKey       string
	Endpoint     string
	LanguageCode string
	PageSize     int
	Timeout      time.Duration
}

// Claim is the projection of a published fact-check the rest of the system uses
type Claim struct {
	Text        string `json:"claim"`
	Claimant    string `json:"claimant"`
	Rating      string `json:"rating"`
	ReviewURL   string `json:"review_url"`
	ReviewTitle string `json:"review_title,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
}

// Result is the list of claims matching one search
type Result struct {
	Claims []Claim `json:"claims"`
}

// Verdict is "verified" when any published fact-check matched
func (r *Result) Verdict() string {
	if r == nil || len(r.Claims) == 0 {
		return VerdictNotFound
	}
	return VerdictVerified
}

// First returns the best matching claim
func (r *Result) First() (Claim, bool) {
	if r == nil || len(r.Claims) == 0 {
		return Claim{}, false
	}
	return r.Claims[0], true
}

// Client searches the Google Fact Check Tools claim index
type Client struct {
	service *factchecktools.Service
	config  Config
	logger  *zap.Logger
}

// NewClient creates a new claim search client. Extra options are appended
// after the ones derived from cfg.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claim search api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := factchecktools.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fact check service: %w", err)
	}

	return &Client{
		service: service,
		config:  cfg,
		logger:  logger,
	}, nil
}

// SearchClaims looks up published fact-checks for text
func (c *Client) SearchClaims(ctx context.Context, text string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	call := c.service.Claims.Search().Query(text).Context(ctx)
	if c.config.LanguageCode != "" {
		call = call.LanguageCode(c.config.LanguageCode)
	}
	if c.config.PageSize > 0 {
		call = call.PageSize(int64(c.config.PageSize))
	}

	resp, err := call.Do()
	if err != nil {
		c.logger.Warn("Fact check search failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result := &Result{Claims: make([]Claim, 0, len(resp.Claims))}
	for _, fc := range resp.Claims {
		if fc == nil {
			continue
		}
		result.Claims = append(result.Claims, project(fc))
	}

	c.logger.Debug("Fact check search completed", zap.Int("claims", len(result.Claims)))
	return result, nil
}

func project(fc *factchecktools.GoogleFactcheckingFactchecktoolsV1alpha1Claim) Claim {
	claim := Claim{
		Text:     fc.Text,
		Claimant: fc.Claimant,
		Rating:   unknownRating,
	}
	if claim.Claimant == "" {
		claim.Claimant = unknownClaimant
	}
	if len(fc.ClaimReview) > 0 && fc.ClaimReview[0] != nil {
		review := fc.ClaimReview[0]
		if review.TextualRating != "" {
			claim.Rating = review.TextualRating
		}
		claim.ReviewURL = review.Url
		claim.ReviewTitle = review.Title
		if review.Publisher != nil {
			claim.Publisher = review.Publisher.Name
		}
	}
	return claim
}
