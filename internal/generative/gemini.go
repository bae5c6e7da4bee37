package generative

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider analyzes claims with Google's Gemini models
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiProvider creates a Gemini-backed analyzer
func NewGeminiProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// AnalyzeClaim asks the model for a structured verdict on text
func (p *GeminiProvider) AnalyzeClaim(ctx context.Context, text string) (*Analysis, error) {
	resp, err := p.client.Models.GenerateContent(ctx,
		p.model,
		genai.Text(BuildPrompt(text)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.2),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %w", ErrUnavailable, err)
	}

	reply := resp.Text()
	p.logger.Debug("Gemini reply received", zap.Int("bytes", len(reply)))

	analysis, err := ParseAnalysis(reply)
	if err != nil {
		p.logger.Warn("Could not parse Gemini reply", zap.Error(err))
		return nil, err
	}
	return analysis, nil
}
