package generative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config selects and configures a generative provider
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Provider is any model that can produce an Analysis
type Provider interface {
	AnalyzeClaim(ctx context.Context, text string) (*Analysis, error)
}

// New builds the provider named by cfg.Provider, wrapped with the
// configured timeout.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		p, err = NewGeminiProvider(ctx, cfg, logger)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown generative provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		p = &timeoutProvider{next: p, timeout: cfg.Timeout}
	}
	return p, nil
}

type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

func (t *timeoutProvider) AnalyzeClaim(ctx context.Context, text string) (*Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.AnalyzeClaim(ctx, text)
}
