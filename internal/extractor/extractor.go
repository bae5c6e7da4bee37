package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrFetch      = errors.New("failed to fetch url")
	ErrNoContent  = errors.New("no readable content found")
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultTimeout   = 10 * time.Second
	defaultMaxBytes  = 5 << 20

	textSelector = "p, h1, h2, h3, h4, h5, h6"
)

// Config tunes page fetching
type Config struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// Extractor fetches a web page and keeps its paragraph and heading text
type Extractor struct {
	client *http.Client
	config Config
	logger *zap.Logger
}

// New creates a new extractor. A nil client gets one with cfg.Timeout.
func New(cfg Config, client *http.Client, logger *zap.Logger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, config: cfg, logger: logger}
}

// Extract returns the visible text of the page at rawURL, joined by spaces
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.config.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}

	text := ExtractText(doc)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoContent, u.Host)
	}

	e.logger.Debug("Extracted page text",
		zap.String("host", u.Host),
		zap.Int("length", len(text)))
	return text, nil
}

// ExtractText drops scripts and styles from doc and joins the text of its
// paragraphs and headings in document order.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style").Remove()

	var parts []string
	doc.Find(textSelector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
